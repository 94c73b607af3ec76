package storage

import (
	"errors"
	"time"
)

var errBoom = errors.New("boom")

func testTime() time.Time {
	return time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)
}
