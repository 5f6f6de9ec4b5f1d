package progression

import (
	"math/rand"
	"time"

	"github.com/SadmanRahman12/GreenZen/models"
)

var defaultRand = rand.New(rand.NewSource(time.Now().UnixNano()))

// AssignDaily guarantees the record has exactly one challenge entry for the
// calendar day of today. An existing entry is returned unchanged, so repeated
// calls on the same day are idempotent. Otherwise one challenge is picked
// uniformly from the active catalog and a fresh entry is appended.
//
// rng may be nil, in which case a package-level source is used; tests inject
// a seeded source for determinism.
func AssignDaily(p *models.UserProgress, today time.Time, catalog []models.Challenge, rng *rand.Rand) (*models.DailyChallenge, error) {
	day := StartOfDay(today)

	if existing := p.DailyChallengeFor(day); existing != nil {
		return existing, nil
	}

	if len(catalog) == 0 {
		return nil, ErrNoChallenges
	}
	if rng == nil {
		rng = defaultRand
	}

	picked := catalog[rng.Intn(len(catalog))]
	p.DailyChallenges = append(p.DailyChallenges, models.DailyChallenge{
		UserProgressID: p.ID,
		Date:           day,
		ChallengeID:    picked.ID,
		Completed:      false,
	})
	return &p.DailyChallenges[len(p.DailyChallenges)-1], nil
}
