// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.  For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by someone
// else, while ErrNotFound is the generic "no such row" signal used for
// camps, properties, reservations and documents alike.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.  Handlers
// translate this into an HTTP 404 response – or, for property-scoped
// catalog reads, into the general-catalog fallback.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because of
// conflicting state, such as patching a cancelled reservation.  Handlers
// should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
