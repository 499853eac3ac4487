package attempts

import "errors"

var (
	ErrTestNotFound     = errors.New("test not found")
	ErrResultNotFound   = errors.New("result not found")
	ErrNoActiveAttempt  = errors.New("no active attempt")
	ErrInvalidInput     = errors.New("invalid input")
	ErrAttemptFinalized = errors.New("attempt already finalized")
)
