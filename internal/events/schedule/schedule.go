// Package schedule derives the open/closed state of an event's registration
// window from its timestamps. All instants are normalized to UTC and compared
// exactly; clock disagreement between client and server is surfaced through
// VerifySkew instead of widening the business window.
package schedule

import (
	"fmt"
	"time"
)

type Decision struct {
	Open    bool
	Message string
}

const (
	dateLayout = "Jan 2, 2006"
	timeLayout = "3:04 PM"
)

// Status classifies registration as not-yet-open, open or ended at the given
// instant. Both window boundaries are inclusive.
func Status(now, regStart, regEnd time.Time) Decision {
	now = now.UTC()
	regStart = regStart.UTC()
	regEnd = regEnd.UTC()

	if now.Before(regStart) {
		return Decision{
			Open: false,
			Message: fmt.Sprintf("registration opens on %s at %s UTC",
				regStart.Format(dateLayout), regStart.Format(timeLayout)),
		}
	}

	if now.After(regEnd) {
		return Decision{
			Open:    false,
			Message: "registration period has ended",
		}
	}

	return Decision{Open: true}
}

// DefaultSkewTolerance bounds acceptable client/server clock disagreement.
// Windows are compared exactly, so anything beyond a few seconds is a
// deployment problem to report, not to paper over.
const DefaultSkewTolerance = 5 * time.Second

type ClockSkewError struct {
	Skew      time.Duration
	Tolerance time.Duration
}

func (e *ClockSkewError) Error() string {
	return fmt.Sprintf("client clock differs from server clock by %s (tolerance %s); fix the local clock configuration", e.Skew, e.Tolerance)
}

// VerifySkew compares a server-reported instant with the local clock and
// returns a *ClockSkewError when they disagree beyond the tolerance.
// A non-positive tolerance falls back to DefaultSkewTolerance.
func VerifySkew(serverNow, localNow time.Time, tolerance time.Duration) error {
	if tolerance <= 0 {
		tolerance = DefaultSkewTolerance
	}

	skew := localNow.UTC().Sub(serverNow.UTC())
	if skew < 0 {
		skew = -skew
	}

	if skew > tolerance {
		return &ClockSkewError{Skew: skew, Tolerance: tolerance}
	}

	return nil
}
