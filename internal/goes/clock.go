package goes

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so time-relative queries are deterministic
// in tests. All times are interpreted in UTC, matching the archive layout.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time in UTC.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// IDGenerator abstracts unique ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }
