package user

import (
	"fmt"
	"time"
)

// User is a validated user record.
type User struct {
	Name      string
	Age       int64
	LastLogin time.Time
}

// Users is a list of validated users in input document order.
type Users []User

// Ages returns the age of every user, in list order.
func (us Users) Ages() []int64 {
	ages := make([]int64, len(us))
	for i, u := range us {
		ages[i] = u.Age
	}
	return ages
}

// lastLoginLayouts lists the accepted ISO-8601 forms, most specific first.
// The zone-less variants are parsed in the caller's location.
var lastLoginLayouts = []struct {
	layout string
	zoned  bool
}{
	{"2006-01-02T15:04:05Z07:00", true},
	{"2006-01-02T15:04:05Z0700", true},
	{"2006-01-02T15:04Z07:00", true},
	{"2006-01-02T15:04Z0700", true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02", false},
}

// ParseLastLogin parses an ISO-8601 date or datetime.
//
// A space is accepted in place of the 'T' separator. Values without an
// offset are interpreted in loc (time.Local when loc is nil).
func ParseLastLogin(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	normalized := s
	if len(s) > 10 && s[10] == ' ' {
		normalized = s[:10] + "T" + s[11:]
	}
	for _, l := range lastLoginLayouts {
		var (
			t   time.Time
			err error
		)
		if l.zoned {
			t, err = time.Parse(l.layout, normalized)
		} else {
			t, err = time.ParseInLocation(l.layout, normalized, loc)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid last_login %q: expected ISO-8601 date or datetime", s)
}
