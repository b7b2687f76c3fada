package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails a business rule (overlapping
// residency periods, return date before departure date, ...).
// Handlers should map this to HTTP 422 Unprocessable Entity. A request that
// fails validation never mutates stored data.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned when a request carries no usable identity.
// Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when the caller's plan does not include a feature.
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")
