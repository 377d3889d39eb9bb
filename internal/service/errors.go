// Package service provides business logic for the application.
package service

import "errors"

// Service errors. Record payload validation errors live in model.
var (
	ErrValidation       = errors.New("validation failed")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrEmailTaken       = errors.New("email already exists")
	ErrInvalidUsername  = errors.New("invalid username")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrNoEntries        = errors.New("no mood entries found")
	ErrInsufficientData = errors.New("not enough mood data to generate chart")
)
