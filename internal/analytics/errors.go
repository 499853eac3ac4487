package analytics

import "errors"

var ErrTestNotFound = errors.New("test not found")
