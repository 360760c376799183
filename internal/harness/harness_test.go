package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/userstats/internal/store"
)

func loadFixture(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_AllFixturesPass(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(context.Background(), s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_RecordsRun(t *testing.T) {
	result, err := Run(context.Background(), loadFixture(t, "mixed_population"))
	require.NoError(t, err)

	require.NotNil(t, result.Run)
	assert.Equal(t, store.StatusOK, result.Run.Status)
	assert.Equal(t, 6, result.Run.UserCount)
	assert.Equal(t, "users.json", result.Run.InputPath)
	assert.Equal(t, "stats.json", result.Run.OutputPath)
	assert.True(t, result.Run.StartedAt.IsZero())
	assert.Equal(t, string(result.Output), result.Run.Output)
	assert.Empty(t, result.RunError)
}

func TestRun_ExpectedFailureIsNotAnError(t *testing.T) {
	result, err := Run(context.Background(), loadFixture(t, "negative_age"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Contains(t, result.RunError, "bob")
	assert.Equal(t, "E202", result.Run.ErrorCode)
}

func TestRun_FailedAssertions(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong
description: "Assertions that do not hold"
now: "2024-06-01T12:00:00Z"
users:
  - {name: a, age: 20, offline_days: 1}
assertions:
  - type: stats
    expect: {avg_age: 99, not_a_field: 1}
  - type: empty
  - type: error
    code: E201
  - type: status
    status: error
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "avg_age = 20, want 99")
	assert.Contains(t, result.Errors[0], "not_a_field missing")
	assert.Contains(t, result.Errors[1], "Assertion failed: empty")
	assert.Contains(t, result.Errors[2], "no error object")
	assert.Contains(t, result.Errors[3], "Actual: ok")
}

func TestRun_ErrorAssertionMismatch(t *testing.T) {
	s := loadFixture(t, "invalid_json")
	offset := int64(3)
	s.Assertions = []Assertion{{Type: AssertError, Code: "E202", User: "alice", Offset: &offset}}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "code = E201, want E202")
	assert.Contains(t, result.Errors[0], `user = "", want "alice"`)
	assert.Contains(t, result.Errors[0], "offset = 11, want 3")
}

func TestRun_CustomSchema(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "adult.cue")
	require.NoError(t, os.WriteFile(schema, []byte(`
#User: {
	age:        int & >=21
	last_login: string
	...
}
`), 0o644))

	s := loadFixture(t, "mixed_population")
	s.Schema = schema
	s.Assertions = []Assertion{{Type: AssertError, Code: "E202", User: "a"}}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_BadSchemaIsAnError(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "broken.cue")
	require.NoError(t, os.WriteFile(schema, []byte(`#User: {`), 0o644))

	s := loadFixture(t, "empty_document")
	s.Schema = schema

	_, err := Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile user schema")
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Type: AssertStats, Expected: "{avg_age=1}", Actual: "avg_age = 2, want 1", Output: "{}\n"}
	assert.Equal(t,
		"Assertion failed: stats\n  Expected: {avg_age=1}\n  Actual: avg_age = 2, want 1\n  Output: {}",
		err.Error())
}
