// Package core defines sentinel errors.
package core

import "errors"

var (
	// Frame codec errors. These are caller-contract violations; untrusted
	// wire input never surfaces as an error, Decode returns nil instead.
	ErrBodyTooLarge  = errors.New("wiretap: body exceeds maximum size")
	ErrInvalidMethod = errors.New("wiretap: method must match [A-Z_]+")

	// Binary utility errors
	ErrInvalidHex = errors.New("wiretap: invalid hex input")

	// Hook pipeline errors
	ErrInvalidHookKey = errors.New("wiretap: hook method key must match [A-Z_]+")

	// Interceptor errors
	ErrInterceptorClosed = errors.New("wiretap: interceptor destroyed")

	// Configuration errors
	ErrConfigInvalid = errors.New("wiretap: invalid configuration")
)
