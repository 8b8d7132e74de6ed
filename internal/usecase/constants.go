package usecase

import "time"

const (
	// DefaultPageSize is used when the request does not carry a size.
	DefaultPageSize = 10

	// MaxPageSize caps the size query parameter.
	MaxPageSize = 100

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// Registration outcomes reported to metrics.
const (
	RegistrationCreated   = "created"
	RegistrationRejected  = "rejected"
	RegistrationActivated = "activated"
)
