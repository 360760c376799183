package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario: one input, one reference time,
// and the assertions the resulting output must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Now is the reference time in RFC 3339.
	Now string `yaml:"now"`

	// Timezone interprets last_login values without an offset. Defaults to UTC
	// so scenarios do not depend on the machine they run on.
	Timezone string `yaml:"timezone,omitempty"`

	// Schema is an optional CUE file defining #User.
	// Relative paths are resolved against the scenario file location.
	Schema string `yaml:"schema,omitempty"`

	// Input is a raw users document. Mutually exclusive with Users.
	Input string `yaml:"input,omitempty"`

	// Users builds the users document in order. Mutually exclusive with Input.
	Users []UserStep `yaml:"users,omitempty"`

	// Assertions validate the output file and recorded run.
	Assertions []Assertion `yaml:"assertions"`
}

// UserStep describes one user of a generated document.
// Exactly one of LastLogin and OfflineDays is set.
type UserStep struct {
	Name        string   `yaml:"name"`
	Age         int64    `yaml:"age"`
	LastLogin   string   `yaml:"last_login,omitempty"`
	OfflineDays *float64 `yaml:"offline_days,omitempty"`
}

// Assertion validates the outcome of a scenario.
type Assertion struct {
	// Type is one of stats, empty, error, status.
	Type string `yaml:"type"`

	// Expect holds expected statistics fields (stats). Subset match.
	Expect map[string]int64 `yaml:"expect,omitempty"`

	// Code is the expected error code (error).
	Code string `yaml:"code,omitempty"`

	// User is the expected offending user (error, optional).
	User string `yaml:"user,omitempty"`

	// Offset is the expected syntax error offset (error, optional).
	Offset *int64 `yaml:"offset,omitempty"`

	// Status is the expected recorded run status (status).
	Status string `yaml:"status,omitempty"`
}

// Assertion type constants.
const (
	AssertStats  = "stats"
	AssertEmpty  = "empty"
	AssertError  = "error"
	AssertStatus = "status"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) {
		scenario.Schema = filepath.Join(filepath.Dir(path), scenario.Schema)
	}
	if scenario.Schema != "" {
		if _, err := os.Stat(scenario.Schema); err != nil {
			return nil, fmt.Errorf("invalid scenario: schema file not found: %s", scenario.Schema)
		}
	}

	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// ReferenceTime parses Now.
func (s *Scenario) ReferenceTime() (time.Time, error) {
	return time.Parse(time.RFC3339, s.Now)
}

// Document returns the users document the scenario feeds to the pipeline.
func (s *Scenario) Document() ([]byte, error) {
	if s.Input != "" {
		return []byte(s.Input), nil
	}

	now, err := s.ReferenceTime()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("{")
	for i, u := range s.Users {
		if i > 0 {
			buf.WriteString(",")
		}
		name, err := json.Marshal(u.Name)
		if err != nil {
			return nil, err
		}
		lastLogin := u.LastLogin
		if u.OfflineDays != nil {
			offline := time.Duration(*u.OfflineDays * float64(24*time.Hour))
			lastLogin = now.Add(-offline).UTC().Format(time.RFC3339Nano)
		}
		value, err := json.Marshal(map[string]any{"age": u.Age, "last_login": lastLogin})
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "\n  %s: %s", name, value)
	}
	buf.WriteString("\n}\n")
	return buf.Bytes(), nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Now == "" {
		return fmt.Errorf("now is required")
	}
	if _, err := s.ReferenceTime(); err != nil {
		return fmt.Errorf("now: expected RFC 3339 time, got %q", s.Now)
	}

	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("timezone: %w", err)
		}
	}

	if s.Input != "" && len(s.Users) > 0 {
		return fmt.Errorf("input and users are mutually exclusive")
	}

	for i, u := range s.Users {
		if u.Name == "" {
			return fmt.Errorf("users[%d]: name is required", i)
		}
		if (u.LastLogin == "") == (u.OfflineDays == nil) {
			return fmt.Errorf("users[%d]: exactly one of last_login and offline_days is required", i)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertStats:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for stats", index)
		}
	case AssertEmpty:
	case AssertError:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error", index)
		}
	case AssertStatus:
		if a.Status != "ok" && a.Status != "error" {
			return fmt.Errorf("assertions[%d]: status must be ok or error, got %q", index, a.Status)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
