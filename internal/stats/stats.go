package stats

import (
	"math/big"
	"slices"
	"time"

	"github.com/roach88/userstats/internal/user"
)

// Summary holds the aggregate statistics for a set of users.
// All averages use floor division.
type Summary struct {
	MinAge    int64 `json:"min_age"`
	MaxAge    int64 `json:"max_age"`
	AvgAge    int64 `json:"avg_age"`
	MedianAge int64 `json:"median_age"`

	LtTwoDaysOfflineAvgAge  int64 `json:"lt_two_days_offline_users_average_age"`
	LtWeekOfflineAvgAge     int64 `json:"lt_week_offline_users_average_age"`
	LtMonthOfflineAvgAge    int64 `json:"lt_month_offline_users_average_age"`
	LtHalfYearOfflineAvgAge int64 `json:"lt_half_of_year_offline_users_average_age"`
	GtHalfYearOfflineAvgAge int64 `json:"gt_half_of_year_offline_users_average_age"`
}

// Fields returns the summary as a flat map keyed by output field name.
func (s *Summary) Fields() map[string]any {
	return map[string]any{
		"min_age":    s.MinAge,
		"max_age":    s.MaxAge,
		"avg_age":    s.AvgAge,
		"median_age": s.MedianAge,

		"lt_two_days_offline_users_average_age":     s.LtTwoDaysOfflineAvgAge,
		"lt_week_offline_users_average_age":         s.LtWeekOfflineAvgAge,
		"lt_month_offline_users_average_age":        s.LtMonthOfflineAvgAge,
		"lt_half_of_year_offline_users_average_age": s.LtHalfYearOfflineAvgAge,
		"gt_half_of_year_offline_users_average_age": s.GtHalfYearOfflineAvgAge,
	}
}

// Compute derives the summary for users as seen at now.
// It returns false when users is empty; there is no meaningful summary then.
func Compute(users user.Users, now time.Time) (*Summary, bool) {
	n := int64(len(users))
	if n == 0 {
		return nil, false
	}

	ages := users.Ages()
	slices.Sort(ages)

	sum := new(big.Int)
	for _, a := range ages {
		sum.Add(sum, big.NewInt(a))
	}

	half := n / 2
	median := ages[half]
	if n%2 == 0 {
		median = floorMidpoint(ages[half-1], ages[half])
	}

	s := &Summary{
		MinAge:    ages[0],
		MaxAge:    ages[n-1],
		AvgAge:    floorMean(sum, n),
		MedianAge: median,
	}

	s.LtTwoDaysOfflineAvgAge = AverageAge(users, offlineLessThan(TwoDays, now))
	s.LtWeekOfflineAvgAge = AverageAge(users, offlineLessThan(Week, now))
	s.LtMonthOfflineAvgAge = AverageAge(users, offlineLessThan(Month, now))
	s.LtHalfYearOfflineAvgAge = AverageAge(users, offlineLessThan(HalfYear, now))
	s.GtHalfYearOfflineAvgAge = AverageAge(users, offlineMoreThan(HalfYear, now))

	return s, true
}

// OfflineFor returns how long u has been offline at now.
// The result is negative when last_login lies in the future.
func OfflineFor(u user.User, now time.Time) time.Duration {
	return now.Sub(u.LastLogin)
}

// AverageAge returns the floor average age of the users matching keep,
// or 0 when none match.
func AverageAge(users user.Users, keep func(user.User) bool) int64 {
	sum := new(big.Int)
	var n int64
	for _, u := range users {
		if keep(u) {
			sum.Add(sum, big.NewInt(u.Age))
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return floorMean(sum, n)
}

// floorMean returns floor(sum / n) for n > 0. The sum of int64 ages may
// exceed int64, but the mean lies between the smallest and largest age.
func floorMean(sum *big.Int, n int64) int64 {
	if sum.IsInt64() {
		return FloorDiv(sum.Int64(), n)
	}
	// Euclidean division equals floor division for a positive divisor.
	return new(big.Int).Div(sum, big.NewInt(n)).Int64()
}

// floorMidpoint returns floor((a + b) / 2) without overflowing.
func floorMidpoint(a, b int64) int64 {
	return a>>1 + b>>1 + a&b&1
}

func offlineLessThan(p Period, now time.Time) func(user.User) bool {
	return func(u user.User) bool {
		return OfflineFor(u, now) < p.Duration()
	}
}

func offlineMoreThan(p Period, now time.Time) func(user.User) bool {
	return func(u user.User) bool {
		return OfflineFor(u, now) > p.Duration()
	}
}

// FloorDiv divides rounding toward negative infinity. b must be non-zero.
func FloorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
