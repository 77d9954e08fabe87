package credits

import "errors"

var (
	// ErrInsufficientCredits indicates the balance cannot cover the request.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrInvalidAmount indicates a non-positive consume or grant.
	ErrInvalidAmount = errors.New("invalid amount")
)
