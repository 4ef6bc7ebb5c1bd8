package domain

import "errors"

// Authentication and authorization.
var (
	// ErrAuthentication is returned for unknown emails and wrong passwords
	// alike; callers must not be able to tell the two apart.
	ErrAuthentication = errors.New("invalid credentials")
	ErrInvalidToken   = errors.New("invalid token")
	ErrUnauthorized   = errors.New("authentication required")
	ErrForbidden      = errors.New("access forbidden")
)

// Lookups.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")
)

// Conflicts and validation.
var (
	ErrUserExists        = errors.New("user already exists")
	ErrCategoryExists    = errors.New("category already exists")
	ErrProductExists     = errors.New("product already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrValidation        = errors.New("validation failed")
)
