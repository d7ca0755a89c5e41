package client

import (
	"errors"

	"github.com/dmitrijs2005/memodiary/internal/common"
)

var (
	ErrUnavailable    = errors.New("server unavailable")
	ErrUnauthorized   = common.ErrUnauthorized
	ErrInvalidRequest = errors.New("invalid request")
	ErrConflict       = errors.New("conflict")
	ErrServer         = errors.New("server error")
)

// IsTransient reports whether err is worth retrying later.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
