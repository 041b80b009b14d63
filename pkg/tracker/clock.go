package tracker

import (
	"time"

	"github.com/harrisonrobin/habitask/pkg/model"
)

// Clock supplies the current instant. The engine never reads it directly;
// the service converts it to "today" in the configured zone.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// FixedDay returns a FixedClock at noon UTC on day.
func FixedDay(day model.Date) FixedClock {
	return FixedClock(day.Time.Add(12 * time.Hour))
}
