package progression_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SadmanRahman12/GreenZen/models"
	"github.com/SadmanRahman12/GreenZen/progression"
)

func TestEvaluateBadges(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc    string
		mutate  func(p *models.UserProgress)
		wantIDs []string
	}{
		{
			desc:    "nothing earned on fresh record",
			mutate:  func(p *models.UserProgress) {},
			wantIDs: nil,
		},
		{
			desc:    "streak of exactly 7",
			mutate:  func(p *models.UserProgress) { p.StreakCurrent = 7 },
			wantIDs: []string{progression.BadgeWeeklyWarrior},
		},
		{
			desc:    "streak of 8 misses the exact-match rule",
			mutate:  func(p *models.UserProgress) { p.StreakCurrent = 8 },
			wantIDs: nil,
		},
		{
			desc:    "streak of exactly 30",
			mutate:  func(p *models.UserProgress) { p.StreakCurrent = 30 },
			wantIDs: []string{progression.BadgeMonthlyMaster},
		},
		{
			desc:    "1000 points",
			mutate:  func(p *models.UserProgress) { p.TotalPoints = 1000 },
			wantIDs: []string{progression.BadgeEcoChampion},
		},
		{
			desc:    "level 10",
			mutate:  func(p *models.UserProgress) { p.Level = 10 },
			wantIDs: []string{progression.BadgeGreenGuru},
		},
		{
			desc: "multiple rules fire independently",
			mutate: func(p *models.UserProgress) {
				p.StreakCurrent = 7
				p.TotalPoints = 2500
				p.Level = 11
			},
			wantIDs: []string{progression.BadgeWeeklyWarrior, progression.BadgeEcoChampion, progression.BadgeGreenGuru},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			p := &models.UserProgress{Level: 1}
			tc.mutate(p)

			earned := progression.EvaluateBadges(p)
			var ids []string
			for _, b := range earned {
				ids = append(ids, b.BadgeID)
			}
			assert.Equal(t, tc.wantIDs, ids)
		})
	}
}

func TestBadgesNeverDuplicated(t *testing.T) {
	t.Parallel()

	p := &models.UserProgress{Level: 1, TotalPoints: 999}
	p.DailyChallenges = append(p.DailyChallenges, models.DailyChallenge{
		Date:        progression.StartOfDay(day(0)),
		ChallengeID: 1,
	})

	// Crossing 1000 grants eco_champion exactly once.
	_, err := progression.ApplyCompletion(p, progression.Reward{
		Points: 50, Source: progression.SourceDaily, SourceID: 1, EventDate: day(0),
	})
	require.NoError(t, err)
	assert.True(t, p.HasBadge(progression.BadgeEcoChampion))
	require.Len(t, p.Badges, 1)

	// A later unrelated completion must not re-grant it.
	summary, err := progression.ApplyCompletion(p, progression.Reward{
		Points: 10, Source: progression.SourceCampaign, SourceID: 2, EventDate: day(1),
	})
	require.NoError(t, err)
	assert.Empty(t, summary.NewBadges)
	assert.Len(t, p.Badges, 1)
}
