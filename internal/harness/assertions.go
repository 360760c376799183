package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Output   string // Output file content for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Output != "" {
		fmt.Fprintf(&buf, "  Output: %s", strings.TrimSpace(e.Output))
	}
	return buf.String()
}

// checkAssertion dispatches on the assertion type.
func checkAssertion(r *Result, a Assertion) error {
	switch a.Type {
	case AssertStats:
		return assertStats(r.Output, a)
	case AssertEmpty:
		return assertEmpty(r.Output)
	case AssertError:
		return assertError(r.Output, a)
	case AssertStatus:
		return assertStatus(r, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertStats checks that the output is a statistics object containing the
// expected fields (subset match).
func assertStats(output []byte, a Assertion) error {
	doc := gjson.ParseBytes(output)
	if !doc.IsObject() || doc.Get("status").Exists() {
		return &AssertionError{
			Type:     AssertStats,
			Expected: "statistics object",
			Actual:   "error object or non-object output",
			Output:   string(output),
		}
	}

	// Sort keys for deterministic failure messages
	keys := make([]string, 0, len(a.Expect))
	for k := range a.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var mismatches []string
	for _, k := range keys {
		got := doc.Get(k)
		switch {
		case !got.Exists():
			mismatches = append(mismatches, fmt.Sprintf("%s missing", k))
		case got.Type != gjson.Number || got.Int() != a.Expect[k]:
			mismatches = append(mismatches, fmt.Sprintf("%s = %s, want %d", k, got.Raw, a.Expect[k]))
		}
	}
	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     AssertStats,
			Expected: formatExpect(a.Expect),
			Actual:   strings.Join(mismatches, "; "),
			Output:   string(output),
		}
	}
	return nil
}

// assertEmpty checks that the output is the empty object.
func assertEmpty(output []byte) error {
	doc := gjson.ParseBytes(output)
	if doc.IsObject() && len(doc.Map()) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertEmpty,
		Expected: "{}",
		Actual:   strings.TrimSpace(string(output)),
	}
}

// assertError checks the error object's code and, if given, user and offset.
func assertError(output []byte, a Assertion) error {
	doc := gjson.ParseBytes(output)
	if doc.Get("status").String() != "error" {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("error object with code %s", a.Code),
			Actual:   "no error object",
			Output:   string(output),
		}
	}

	var mismatches []string
	if code := doc.Get("error.code").String(); code != a.Code {
		mismatches = append(mismatches, fmt.Sprintf("code = %s, want %s", code, a.Code))
	}
	if a.User != "" {
		if got := doc.Get("error.details.user").String(); got != a.User {
			mismatches = append(mismatches, fmt.Sprintf("user = %q, want %q", got, a.User))
		}
	}
	if a.Offset != nil {
		if got := doc.Get("error.details.offset"); !got.Exists() || got.Int() != *a.Offset {
			mismatches = append(mismatches, fmt.Sprintf("offset = %s, want %d", got.Raw, *a.Offset))
		}
	}
	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("error object with code %s", a.Code),
			Actual:   strings.Join(mismatches, "; "),
			Output:   string(output),
		}
	}
	return nil
}

// assertStatus checks the recorded run status.
func assertStatus(r *Result, a Assertion) error {
	if r.Run == nil {
		return &AssertionError{
			Type:     AssertStatus,
			Expected: fmt.Sprintf("recorded run with status %s", a.Status),
			Actual:   "no run recorded",
		}
	}
	if string(r.Run.Status) != a.Status {
		return &AssertionError{
			Type:     AssertStatus,
			Expected: a.Status,
			Actual:   string(r.Run.Status),
		}
	}
	return nil
}

func formatExpect(expect map[string]int64) string {
	keys := make([]string, 0, len(expect))
	for k := range expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, expect[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
