package progression

import "errors"

// Sentinel errors surfaced by the progression core. Controllers map these onto
// the uniform JSON envelope with stable numeric codes.
var (
	// ErrAlreadyCompleted means the idempotency guard tripped: the source was
	// already completed for its scope (same calendar day, or same campaign
	// challenge). No state is mutated.
	ErrAlreadyCompleted = errors.New("already completed")

	// ErrNoDailyChallenge means no challenge has been assigned for the day yet.
	ErrNoDailyChallenge = errors.New("no challenge assigned for today")

	// ErrNoChallenges means the active challenge catalog is empty. This is a
	// configuration problem, not a user error.
	ErrNoChallenges = errors.New("no active challenges available")

	// ErrInvalidPoints rejects a reward whose point value is negative.
	ErrInvalidPoints = errors.New("reward points must be non-negative")
)
