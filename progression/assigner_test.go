package progression_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SadmanRahman12/GreenZen/models"
	"github.com/SadmanRahman12/GreenZen/progression"
)

func catalog(n int) []models.Challenge {
	out := make([]models.Challenge, n)
	for i := range out {
		out[i] = models.Challenge{ID: uint(i + 1), Title: "challenge", Points: 10, IsActive: true}
	}
	return out
}

func TestAssignDailyCreatesOneEntryPerDay(t *testing.T) {
	t.Parallel()

	p := freshProgress()
	rng := rand.New(rand.NewSource(42))
	today := day(0)

	entry, err := progression.AssignDaily(p, today, catalog(5), rng)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.False(t, entry.Completed)
	assert.True(t, progression.SameDay(entry.Date, today))
	assert.Equal(t, time.Duration(0), entry.Date.Sub(progression.StartOfDay(today)))

	// Second call the same day returns the existing entry, no new row.
	again, err := progression.AssignDaily(p, today.Add(5*time.Hour), catalog(5), rng)
	require.NoError(t, err)
	assert.Equal(t, entry.ChallengeID, again.ChallengeID)
	assert.Len(t, p.DailyChallenges, 1)

	// The next day gets a fresh entry.
	_, err = progression.AssignDaily(p, day(1), catalog(5), rng)
	require.NoError(t, err)
	assert.Len(t, p.DailyChallenges, 2)
}

func TestAssignDailyPreservesCompletedFlag(t *testing.T) {
	t.Parallel()

	p := freshProgress()
	done := day(0)
	p.DailyChallenges = append(p.DailyChallenges, models.DailyChallenge{
		Date:        progression.StartOfDay(done),
		ChallengeID: 3,
		Completed:   true,
	})

	entry, err := progression.AssignDaily(p, done, catalog(4), nil)
	require.NoError(t, err)
	assert.True(t, entry.Completed)
	assert.Equal(t, uint(3), entry.ChallengeID)
}

func TestAssignDailyEmptyCatalog(t *testing.T) {
	t.Parallel()

	p := freshProgress()
	entry, err := progression.AssignDaily(p, day(0), nil, nil)
	assert.ErrorIs(t, err, progression.ErrNoChallenges)
	assert.Nil(t, entry)
	assert.Empty(t, p.DailyChallenges)
}

func TestAssignDailyPicksFromCatalog(t *testing.T) {
	t.Parallel()

	pool := catalog(10)
	seen := map[uint]bool{}
	for seed := int64(0); seed < 20; seed++ {
		p := freshProgress()
		entry, err := progression.AssignDaily(p, day(0), pool, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, entry.ChallengeID, uint(1))
		assert.LessOrEqual(t, entry.ChallengeID, uint(10))
		seen[entry.ChallengeID] = true
	}
	// Uniform selection over 20 seeds should not collapse to one value.
	assert.Greater(t, len(seen), 1)
}
