// Package common defines shared constants and sentinel errors used across
// client and server layers of memodiary. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an entity that is absent. It is never replaced by a
	// synthesized default value.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists reports a create that collides with an existing key.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput reports a request rejected by validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorage wraps every local persistence failure. It is fatal to the
	// calling operation and is never retried internally.
	ErrStorage = errors.New("storage error")

	// ErrSerialization reports a payload that cannot be encoded or decoded.
	ErrSerialization = errors.New("serialization error")

	// ErrUnauthorized reports a missing or invalid access token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken reports a token that failed signature or claim checks.
	ErrInvalidToken = errors.New("invalid token")
)

// StorageError tags err as a storage failure of operation op, keeping the
// original error in the chain.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
