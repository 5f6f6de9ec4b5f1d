package progression_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SadmanRahman12/GreenZen/models"
	"github.com/SadmanRahman12/GreenZen/progression"
)

func day(offset int) time.Time {
	base := time.Date(2025, 9, 1, 10, 30, 0, 0, time.Local)
	return base.AddDate(0, 0, offset)
}

func freshProgress() *models.UserProgress {
	return &models.UserProgress{UserID: 1, Level: 1, ExperienceToNextLevel: 100}
}

func withDaily(p *models.UserProgress, d time.Time, challengeID uint) *models.UserProgress {
	p.DailyChallenges = append(p.DailyChallenges, models.DailyChallenge{
		Date:        progression.StartOfDay(d),
		ChallengeID: challengeID,
	})
	return p
}

func TestApplyCompletionFirstDaily(t *testing.T) {
	t.Parallel()

	p := withDaily(freshProgress(), day(0), 7)
	summary, err := progression.ApplyCompletion(p, progression.Reward{
		Points:    50,
		Source:    progression.SourceDaily,
		SourceID:  7,
		EventDate: day(0),
	})
	require.NoError(t, err)

	assert.Equal(t, 50, p.TotalPoints)
	assert.Equal(t, 50, p.Experience)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 1, p.StreakCurrent)
	assert.Equal(t, 1, p.StreakLongest)
	assert.Equal(t, 50, summary.PointsEarned)
	assert.Equal(t, 1, summary.Streak)
	require.Len(t, p.CompletedChallenges, 1)
	assert.Equal(t, uint(7), p.CompletedChallenges[0].ChallengeID)
	assert.Equal(t, 50, p.CompletedChallenges[0].PointsEarned)
	require.NotNil(t, p.DailyChallenges[0].CompletedAt)
	assert.True(t, p.DailyChallenges[0].Completed)
}

func TestApplyCompletionLevelUp(t *testing.T) {
	t.Parallel()

	p := withDaily(freshProgress(), day(0), 3)
	p.Experience = 90

	summary, err := progression.ApplyCompletion(p, progression.Reward{
		Points:    20,
		Source:    progression.SourceDaily,
		SourceID:  3,
		EventDate: day(0),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 10, p.Experience) // 90 + 20 - 100
	assert.Equal(t, 200, p.ExperienceToNextLevel)
	assert.Equal(t, 2, summary.Level)
}

func TestApplyCompletionExperienceInvariant(t *testing.T) {
	t.Parallel()

	// Catalog points never exceed 100, so a single level-up check keeps
	// experience strictly below the threshold at every level.
	p := freshProgress()
	for i := 0; i < 40; i++ {
		pp := withDaily(p, day(i), uint(i+1))
		_, err := progression.ApplyCompletion(pp, progression.Reward{
			Points:    100,
			Source:    progression.SourceDaily,
			SourceID:  uint(i + 1),
			EventDate: day(i),
		})
		require.NoError(t, err)
		assert.Less(t, p.Experience, p.Level*100, "after completion %d", i)
	}
}

func TestApplyCompletionAlreadyCompleted(t *testing.T) {
	t.Parallel()

	p := withDaily(freshProgress(), day(0), 5)
	_, err := progression.ApplyCompletion(p, progression.Reward{
		Points: 30, Source: progression.SourceDaily, SourceID: 5, EventDate: day(0),
	})
	require.NoError(t, err)

	before := *p
	beforeHistory := len(p.CompletedChallenges)

	_, err = progression.ApplyCompletion(p, progression.Reward{
		Points: 30, Source: progression.SourceDaily, SourceID: 5, EventDate: day(0),
	})
	assert.ErrorIs(t, err, progression.ErrAlreadyCompleted)
	assert.Equal(t, before.TotalPoints, p.TotalPoints)
	assert.Equal(t, before.Level, p.Level)
	assert.Equal(t, before.StreakCurrent, p.StreakCurrent)
	assert.Len(t, p.CompletedChallenges, beforeHistory)
}

func TestApplyCompletionNoDailyAssigned(t *testing.T) {
	t.Parallel()

	_, err := progression.ApplyCompletion(freshProgress(), progression.Reward{
		Points: 10, Source: progression.SourceDaily, SourceID: 1, EventDate: day(0),
	})
	assert.ErrorIs(t, err, progression.ErrNoDailyChallenge)
}

func TestApplyCompletionRejectsNegativePoints(t *testing.T) {
	t.Parallel()

	p := withDaily(freshProgress(), day(0), 1)
	_, err := progression.ApplyCompletion(p, progression.Reward{
		Points: -1, Source: progression.SourceDaily, SourceID: 1, EventDate: day(0),
	})
	assert.ErrorIs(t, err, progression.ErrInvalidPoints)
	assert.Zero(t, p.TotalPoints)
}

func TestStreakLaw(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc           string
		lastActivity   int // day offset, -100 means none
		prevCurrent    int
		prevLongest    int
		wantCurrent    int
		wantLongest    int
		completeOffset int
	}{
		{desc: "no prior activity starts at 1", lastActivity: -100, wantCurrent: 1, wantLongest: 1},
		{desc: "consecutive day increments", lastActivity: -1, prevCurrent: 3, prevLongest: 5, wantCurrent: 4, wantLongest: 5},
		{desc: "gap of two days resets to 1", lastActivity: -2, prevCurrent: 6, prevLongest: 6, wantCurrent: 1, wantLongest: 6},
		{desc: "long gap resets to 1", lastActivity: -30, prevCurrent: 9, prevLongest: 12, wantCurrent: 1, wantLongest: 12},
		{desc: "new record raises longest", lastActivity: -1, prevCurrent: 12, prevLongest: 12, wantCurrent: 13, wantLongest: 13},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			p := withDaily(freshProgress(), day(tc.completeOffset), 2)
			p.StreakCurrent = tc.prevCurrent
			p.StreakLongest = tc.prevLongest
			if tc.lastActivity != -100 {
				last := progression.StartOfDay(day(tc.lastActivity))
				p.LastActivity = &last
			}

			_, err := progression.ApplyCompletion(p, progression.Reward{
				Points: 10, Source: progression.SourceDaily, SourceID: 2, EventDate: day(tc.completeOffset),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.wantCurrent, p.StreakCurrent)
			assert.Equal(t, tc.wantLongest, p.StreakLongest)
			require.NotNil(t, p.LastActivity)
			assert.True(t, progression.SameDay(*p.LastActivity, day(tc.completeOffset)))
		})
	}
}

func TestSevenDayStreakEarnsWeeklyWarrior(t *testing.T) {
	t.Parallel()

	p := freshProgress()
	for i := 0; i < 7; i++ {
		withDaily(p, day(i), uint(100+i))
		_, err := progression.ApplyCompletion(p, progression.Reward{
			Points:    60,
			Source:    progression.SourceDaily,
			SourceID:  uint(100 + i),
			EventDate: day(i),
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 7, p.StreakCurrent)
	assert.Equal(t, 420, p.TotalPoints)
	assert.True(t, p.HasBadge(progression.BadgeWeeklyWarrior))
}

func TestCampaignSourceSkipsStreak(t *testing.T) {
	t.Parallel()

	p := freshProgress()
	summary, err := progression.ApplyCompletion(p, progression.Reward{
		Points: 40, Source: progression.SourceCampaign, SourceID: 9, EventDate: day(0),
	})
	require.NoError(t, err)

	assert.Equal(t, 40, p.TotalPoints)
	assert.Zero(t, p.StreakCurrent)
	assert.Nil(t, p.LastActivity)
	assert.Len(t, p.CompletedChallenges, 1)
	assert.Equal(t, 40, summary.TotalPoints)
}

func TestCompleteHabit(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc          string
		lastCompleted int // offset, -100 means never
		prevStreak    int
		wantStreak    int
		wantErr       error
	}{
		{desc: "first completion", lastCompleted: -100, wantStreak: 1},
		{desc: "consecutive day", lastCompleted: -1, prevStreak: 4, wantStreak: 5},
		{desc: "missed a day", lastCompleted: -3, prevStreak: 8, wantStreak: 1},
		{desc: "same day rejected", lastCompleted: 0, prevStreak: 2, wantStreak: 2, wantErr: progression.ErrAlreadyCompleted},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			h := &models.Habit{Name: "cycle to work", Points: 15, Streak: tc.prevStreak}
			if tc.lastCompleted != -100 {
				last := progression.StartOfDay(day(tc.lastCompleted))
				h.LastCompleted = &last
			}

			err := progression.CompleteHabit(h, day(0))
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, tc.wantStreak, h.Streak)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantStreak, h.Streak)
			require.NotNil(t, h.LastCompleted)
			assert.True(t, progression.SameDay(*h.LastCompleted, day(0)))
			require.NotNil(t, h.NextDue)
			assert.True(t, progression.SameDay(*h.NextDue, day(1)))
		})
	}
}
