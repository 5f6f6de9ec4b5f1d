package progression

import (
	"time"

	"github.com/SadmanRahman12/GreenZen/models"
)

// Source identifies what kind of completion produced a reward.
type Source string

const (
	// SourceDaily is the user's assigned daily challenge.
	SourceDaily Source = "daily"
	// SourceCampaign is a challenge completed inside a campaign.
	SourceCampaign Source = "campaign"
	// SourceHabit is a personal habit completion.
	SourceHabit Source = "habit"
)

// Reward describes one completion event to apply to a progress record.
type Reward struct {
	Points    int
	Source    Source
	SourceID  uint // challenge id for daily/campaign, habit id for habit
	EventDate time.Time
}

// Summary reports what a completion granted; it feeds the caller's
// confirmation payload only and carries no state of its own.
type Summary struct {
	PointsEarned int            `json:"points_earned"`
	TotalPoints  int            `json:"total_points"`
	Level        int            `json:"level"`
	Experience   int            `json:"experience"`
	Streak       int            `json:"streak"`
	NewBadges    []models.Badge `json:"new_badges,omitempty"`
}

// ApplyCompletion applies one completion event to the progress record in
// memory and returns a reward summary. The record is left untouched when an
// error is returned; the caller persists the mutation, typically inside a
// transaction holding a row lock on the record.
//
// Level-up is evaluated once per completion, not in a loop. Catalog points
// are capped at 100 and the threshold is level*100, so a single check keeps
// experience below the threshold for any reward the catalog can produce.
func ApplyCompletion(p *models.UserProgress, r Reward) (Summary, error) {
	if r.Points < 0 {
		return Summary{}, ErrInvalidPoints
	}

	day := StartOfDay(r.EventDate)

	var daily *models.DailyChallenge
	if r.Source == SourceDaily {
		daily = p.DailyChallengeFor(day)
		if daily == nil {
			return Summary{}, ErrNoDailyChallenge
		}
		if daily.Completed {
			return Summary{}, ErrAlreadyCompleted
		}
	}

	p.TotalPoints += r.Points
	p.Experience += r.Points

	if threshold := p.Level * 100; p.Experience >= threshold {
		p.Level++
		p.Experience -= threshold
		p.ExperienceToNextLevel = p.Level * 100
	}

	if r.Source == SourceDaily || r.Source == SourceHabit {
		advanceStreak(p, day)
	}

	now := r.EventDate
	switch r.Source {
	case SourceDaily:
		daily.Completed = true
		daily.CompletedAt = &now
		p.CompletedChallenges = append(p.CompletedChallenges, models.CompletedChallenge{
			UserProgressID: p.ID,
			ChallengeID:    r.SourceID,
			CompletedAt:    now,
			PointsEarned:   r.Points,
		})
	case SourceCampaign:
		p.CompletedChallenges = append(p.CompletedChallenges, models.CompletedChallenge{
			UserProgressID: p.ID,
			ChallengeID:    r.SourceID,
			CompletedAt:    now,
			PointsEarned:   r.Points,
		})
	}

	newBadges := EvaluateBadges(p)
	p.Badges = append(p.Badges, newBadges...)

	return Summary{
		PointsEarned: r.Points,
		TotalPoints:  p.TotalPoints,
		Level:        p.Level,
		Experience:   p.Experience,
		Streak:       p.StreakCurrent,
		NewBadges:    newBadges,
	}, nil
}

// advanceStreak applies the streak law for one qualifying day:
// consecutive day increments, a gap (or no history) restarts at 1, and a
// same-day repeat leaves the chain unchanged. The longest streak never
// decreases.
func advanceStreak(p *models.UserProgress, day time.Time) {
	switch {
	case p.LastActivity != nil && isYesterday(*p.LastActivity, day):
		p.StreakCurrent++
	case p.LastActivity == nil || !SameDay(*p.LastActivity, day):
		p.StreakCurrent = 1
	default:
		// already counted today; tolerated idempotently
	}

	if p.StreakCurrent > p.StreakLongest {
		p.StreakLongest = p.StreakCurrent
	}
	p.LastActivity = &day
}

// CompleteHabit updates a habit's own streak bookkeeping for a completion at
// now. The rules mirror the aggregate streak but are scoped to the single
// habit: once per calendar day, consecutive days increment, a gap restarts
// at 1. NextDue is always the following day.
func CompleteHabit(h *models.Habit, now time.Time) error {
	day := StartOfDay(now)

	if h.LastCompleted != nil && SameDay(*h.LastCompleted, day) {
		return ErrAlreadyCompleted
	}

	if h.LastCompleted != nil && isYesterday(*h.LastCompleted, day) {
		h.Streak++
	} else {
		h.Streak = 1
	}

	next := day.AddDate(0, 0, 1)
	h.LastCompleted = &day
	h.NextDue = &next
	return nil
}
