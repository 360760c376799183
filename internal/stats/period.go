package stats

import (
	"fmt"
	"time"
)

// Period is an offline-duration threshold measured in whole days.
type Period int

const (
	TwoDays  Period = 2
	Week     Period = 7
	Month    Period = 30
	HalfYear Period = 180
)

// Periods lists the "offline less than" thresholds in ascending order.
var Periods = []Period{TwoDays, Week, Month, HalfYear}

// Duration returns the period as a time.Duration.
func (p Period) Duration() time.Duration {
	return time.Duration(p) * 24 * time.Hour
}

// Key returns the name fragment used in Summary field names.
func (p Period) Key() string {
	switch p {
	case TwoDays:
		return "two_days"
	case Week:
		return "week"
	case Month:
		return "month"
	case HalfYear:
		return "half_of_year"
	default:
		return fmt.Sprintf("%d_days", int(p))
	}
}

func (p Period) String() string {
	return p.Key()
}
