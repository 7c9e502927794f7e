package repositories

import "errors"

// Store-level errors shared by every repository implementation. Handlers and
// services match these with errors.Is; anything else coming out of a
// repository is an underlying store failure.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrInsufficientStock = errors.New("insufficient stock")
)
