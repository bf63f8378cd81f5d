package services

import "errors"

// Shared errors surfaced to the calling layer. None of these are retried
// here: retries, if any, are the caller's decision after inspecting the
// condition.
var (
	// ErrNothingToScore means the round has no playable matches or no
	// predictions yet. It is deliberately distinct from "everyone scored
	// zero": existing round-winner rows must not be overwritten with an
	// empty set.
	ErrNothingToScore = errors.New("nothing to score for this round")

	// ErrScoringInProgress is the retryable conflict returned when a
	// second scoring request arrives for a round already being scored.
	ErrScoringInProgress = errors.New("scoring already in progress for this round")

	// ErrRoundClosed rejects prediction writes after a round is closed.
	ErrRoundClosed = errors.New("round is closed for predictions")

	ErrInvalidScoreline    = errors.New("goal counts must be non-negative")
	ErrInvalidFinalistPair = errors.New("champion and runner-up must be different teams")
	ErrInvalidTopN         = errors.New("podium size must be positive")
	ErrTieNotFound         = errors.New("knockout tie not found")
)
