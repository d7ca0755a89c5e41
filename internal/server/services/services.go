// Package services implements the server-side memo and diary operations.
// Every call is scoped to the user id taken from the caller's token. The
// service assigns ids and the authoritative updated_at of each record.
package services

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/memodiary/internal/common"
	"github.com/dmitrijs2005/memodiary/internal/timex"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

const dateLayout = time.DateOnly

func pageLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	}
	return limit
}

func pageOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func validateDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("date %q: %w", date, common.ErrInvalidInput)
	}
	return nil
}

// memoID rejects ids that cannot name a stored memo. Such ids are
// reported as missing rather than as a storage failure.
func memoID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("memo %s: %w", id, common.ErrNotFound)
	}
	return u.String(), nil
}

// nextUpdatedAt keeps updated_at strictly increasing per record even when
// the wall clock stalls or steps back.
func nextUpdatedAt(now time.Time, prev int64) int64 {
	ts := timex.Millis(now)
	if ts <= prev {
		ts = prev + 1
	}
	return ts
}
