// Package common defines shared sentinel errors and small helpers used across
// lookboard components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrValidation marks a malformed identity or secret.
	ErrValidation = errors.New("validation error")

	// ErrDuplicate marks an identity that is already present on the board.
	ErrDuplicate = errors.New("identity already exists")

	// ErrAuth marks an unavailable store/blob credential or client handle.
	ErrAuth = errors.New("store unavailable")

	// ErrRemote marks a network or API failure on read or write.
	ErrRemote = errors.New("remote error")

	// ErrBlob marks an upload/delete failure against the blob store.
	// It is never escalated past the operation that owns the blob.
	ErrBlob = errors.New("blob error")
)
