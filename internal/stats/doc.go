// Package stats computes age statistics over validated users.
//
// Summary fields:
//
//	min_age, max_age, avg_age, median_age
//	lt_<period>_offline_users_average_age   offline < period, period in {2d, 7d, 30d, 180d}
//	gt_half_of_year_offline_users_average_age  offline > 180d
//
// Offline duration is now minus last_login as elapsed time, not wall-clock
// difference: across a daylight saving change in the input location a
// zone-less last_login is an hour nearer or further than its calendar
// reading suggests. Both comparisons are strict, so a user offline exactly
// 180 days falls in neither half-year bucket. Averages and the even-count
// median use floor division over the exact sum, so ages
// near the int64 limit do not overflow. A bucket with no users reports 0.
package stats
