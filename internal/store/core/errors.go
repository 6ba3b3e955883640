package core

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict: colisión de username (único, case-insensitive).
	ErrConflict = errors.New("conflict")
	// ErrEmailConflict: colisión de email (único, case-insensitive).
	ErrEmailConflict = errors.New("email conflict")
	ErrInvalid       = errors.New("invalid")
)
