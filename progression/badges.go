package progression

import (
	"time"

	"github.com/SadmanRahman12/GreenZen/models"
)

// Badge identifiers granted by the rule set.
const (
	BadgeWeeklyWarrior = "weekly_warrior"
	BadgeMonthlyMaster = "monthly_master"
	BadgeEcoChampion   = "eco_champion"
	BadgeGreenGuru     = "green_guru"
)

type badgeRule struct {
	id          string
	name        string
	description string
	icon        string
	earned      func(p *models.UserProgress) bool
}

// Streak rules intentionally match the exact threshold value rather than >=:
// a chain that skips the value (e.g. via an admin adjustment) misses the
// badge. Kept to preserve observed behavior.
var badgeRules = []badgeRule{
	{
		id:          BadgeWeeklyWarrior,
		name:        "Weekly Warrior",
		description: "Complete challenges for 7 days in a row",
		icon:        "fas fa-fire",
		earned:      func(p *models.UserProgress) bool { return p.StreakCurrent == 7 },
	},
	{
		id:          BadgeMonthlyMaster,
		name:        "Monthly Master",
		description: "Complete challenges for 30 days in a row",
		icon:        "fas fa-crown",
		earned:      func(p *models.UserProgress) bool { return p.StreakCurrent == 30 },
	},
	{
		id:          BadgeEcoChampion,
		name:        "Eco Champion",
		description: "Earn 1000 eco-points",
		icon:        "fas fa-trophy",
		earned:      func(p *models.UserProgress) bool { return p.TotalPoints >= 1000 },
	},
	{
		id:          BadgeGreenGuru,
		name:        "Green Guru",
		description: "Reach level 10",
		icon:        "fas fa-star",
		earned:      func(p *models.UserProgress) bool { return p.Level >= 10 },
	},
}

// EvaluateBadges returns the badges the record newly qualifies for, excluding
// any it already holds. Each rule is independent and idempotent; the caller
// appends the result to the record.
func EvaluateBadges(p *models.UserProgress) []models.Badge {
	var earned []models.Badge
	now := time.Now()
	for _, rule := range badgeRules {
		if p.HasBadge(rule.id) || !rule.earned(p) {
			continue
		}
		earned = append(earned, models.Badge{
			UserProgressID: p.ID,
			BadgeID:        rule.id,
			Name:           rule.name,
			Description:    rule.description,
			Icon:           rule.icon,
			EarnedAt:       now,
		})
	}
	return earned
}
