package domain

import "errors"

var (
	// ErrInvalidEntry indicates a day entry with a malformed date or unknown flow.
	ErrInvalidEntry = errors.New("invalid day entry")
	// ErrInvalidProfile indicates a profile update outside the allowed bounds.
	ErrInvalidProfile = errors.New("invalid profile")
	// ErrInvalidSnapshot indicates an import payload that cannot be applied.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
