package loyalty

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound is returned when no loyalty account exists for the
	// requested user or account id.
	ErrAccountNotFound = errors.New("loyalty account not found")

	// ErrAccountExists is returned by CreateAccount when the user already has
	// an account.
	ErrAccountExists = errors.New("loyalty account already exists")

	// ErrRedemptionNotFound is returned when no redemption exists for the
	// requested id.
	ErrRedemptionNotFound = errors.New("redemption not found")

	// ErrConflict signals that a concurrent mutation invalidated the caller's
	// read. It is retried internally and never surfaces on the happy path.
	ErrConflict = errors.New("concurrent balance mutation detected")

	// ErrStoreUnavailable wraps transport-level store failures. Safe to retry
	// the whole operation; no partial effect was applied.
	ErrStoreUnavailable = errors.New("ledger store unavailable")

	// ErrNonPositivePoints rejects zero or negative point amounts.
	ErrNonPositivePoints = errors.New("points must be a positive integer")
)

// InsufficientPointsError carries the available and required amounts so the
// caller can render a precise message.
type InsufficientPointsError struct {
	Available int64
	Required  int64
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: available %d, required %d", e.Available, e.Required)
}

// IsInsufficientPoints reports whether err is an InsufficientPointsError.
func IsInsufficientPoints(err error) bool {
	var target *InsufficientPointsError
	return errors.As(err, &target)
}
