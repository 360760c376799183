package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/userstats/internal/user"
)

// UserSpec describes a fixture user by how long they have been offline.
type UserSpec struct {
	Name    string
	Age     int64
	Offline time.Duration
}

// Offline builds a UserSpec for a user offline for the given number of days.
func Offline(name string, age int64, days float64) UserSpec {
	return UserSpec{Name: name, Age: age, Offline: time.Duration(days * float64(24*time.Hour))}
}

// Users builds validated users relative to now.
func Users(now time.Time, specs ...UserSpec) user.Users {
	users := make(user.Users, len(specs))
	for i, s := range specs {
		users[i] = user.User{Name: s.Name, Age: s.Age, LastLogin: now.Add(-s.Offline)}
	}
	return users
}

// UsersJSON renders specs as a users document relative to now,
// preserving argument order. last_login is written in RFC 3339 UTC.
func UsersJSON(now time.Time, specs ...UserSpec) []byte {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, s := range specs {
		name, _ := json.Marshal(s.Name)
		lastLogin := now.Add(-s.Offline).UTC().Format(time.RFC3339)
		fmt.Fprintf(&buf, "  %s: {\"age\": %d, \"last_login\": %q}", name, s.Age, lastLogin)
		if i < len(specs)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes()
}

// WriteFile writes data to dir/name and returns the full path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}
