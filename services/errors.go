package services

import "errors"

// Engine error taxonomy. Handlers map these onto HTTP statuses:
// validation → 400, conflicts → 409, not-found → 404.
var (
	// Validation (malformed input, non-retryable)
	ErrInvalidAmount = errors.New("xp amount must be a non-negative integer")
	ErrInvalidSpec   = errors.New("invalid orb spec")

	// Conflicts (resource exhausted or already claimed; try a different target)
	ErrAlreadyCollected    = errors.New("orb already collected by this user")
	ErrOrbExhausted        = errors.New("orb collection limit reached")
	ErrOrbInactive         = errors.New("orb is not active")
	ErrRedemptionExhausted = errors.New("reward redemption limit reached")
	ErrRewardExpired       = errors.New("reward has expired")

	// Not found
	ErrUserNotFound     = errors.New("user profile not found")
	ErrOrbNotFound      = errors.New("orb not found")
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrRewardNotFound   = errors.New("reward not found")
	ErrClueNotFound     = errors.New("clue not found")
	ErrMissionNotFound  = errors.New("mission not found")
)
