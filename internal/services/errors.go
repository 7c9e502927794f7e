package services

import "errors"

var (
	// ErrInvalidCredentials is returned on any authentication failure. It is
	// deliberately the same for an unknown email and a wrong password so the
	// response does not reveal which one occurred.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidDeduction is returned when a stock deduction request is
	// missing a product id or asks for a non-positive quantity.
	ErrInvalidDeduction = errors.New("productId and a positive quantity are required")
)
