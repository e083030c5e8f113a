package scoring

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid scoring config")
	ErrInvalidPick   = errors.New("invalid pick")
	ErrUnknownMethod = errors.New("unknown scoring method")
)
