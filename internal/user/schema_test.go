package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := DefaultValidator()
	require.NoError(t, err)
	return v
}

func TestValidate_ValidRecord(t *testing.T) {
	v := newTestValidator(t)

	u, err := v.Validate(Record{
		Name: "alice",
		Raw:  []byte(`{"age": 31, "last_login": "2024-03-01T10:15:00"}`),
	}, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "alice", u.Name)
	assert.Equal(t, int64(31), u.Age)
	assert.True(t, u.LastLogin.Equal(time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)))
}

func TestValidate_ExtraFieldsIgnored(t *testing.T) {
	v := newTestValidator(t)

	u, err := v.Validate(Record{
		Name: "bob",
		Raw:  []byte(`{"age": 45, "last_login": "2023-07-19", "email": "bob@example.com", "tags": ["a"]}`),
	}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(45), u.Age)
}

func TestValidate_RepeatedKeysKeepLastValue(t *testing.T) {
	v := newTestValidator(t)

	u, err := v.Validate(Record{
		Name: "a",
		Raw:  []byte(`{"age": 1, "age": 2, "last_login": "2024-01-01"}`),
	}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(2), u.Age)

	// The last value decides, even when an earlier one would fail.
	u, err = v.Validate(Record{
		Name: "b",
		Raw:  []byte(`{"age": -1, "last_login": "yesterday", "age": 7, "last_login": "2024-01-02", "meta": {"k": 1, "k": 2}}`),
	}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.Age)
	assert.True(t, u.LastLogin.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))

	_, err = v.Validate(Record{
		Name: "c",
		Raw:  []byte(`{"age": 3, "age": -3, "last_login": "2024-01-01"}`),
	}, time.UTC)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestValidate_EmptyNameIsAUser(t *testing.T) {
	v := newTestValidator(t)

	_, err := v.Validate(Record{Name: "", Raw: []byte(`{"age": -1, "last_login": "2024-01-01"}`)}, time.UTC)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.False(t, ve.Document)
	assert.Equal(t, "", ve.User)
	assert.Contains(t, ve.Error(), `invalid user "":`)
}

func TestCollapseKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no_repeats", `{"a": 1, "b": [1, 2]}`, `{"a":1,"b":[1,2]}`},
		{"first_position_last_value", `{"a": 1, "b": 2, "a": 3}`, `{"a":3,"b":2}`},
		{"nested", `{"x": [{"k": 1, "k": {"y": 1, "y": 2}}]}`, `{"x":[{"k":{"y":2}}]}`},
		{"escaped_key", `{"\u0061": 1, "a": 2}`, `{"\u0061":2}`},
		{"scalar", `"text"`, `"text"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(collapseKeys(gjson.Parse(tt.in))))
		})
	}
}

func TestValidate_InvalidRecords(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"negative_age", `{"age": -1, "last_login": "2024-03-01"}`},
		{"string_age", `{"age": "31", "last_login": "2024-03-01"}`},
		{"float_age", `{"age": 31.5, "last_login": "2024-03-01"}`},
		{"missing_age", `{"last_login": "2024-03-01"}`},
		{"missing_last_login", `{"age": 31}`},
		{"null_last_login", `{"age": 31, "last_login": null}`},
		{"bad_last_login", `{"age": 31, "last_login": "yesterday"}`},
		{"us_date", `{"age": 31, "last_login": "03/01/2024"}`},
		{"not_an_object", `42`},
		{"array", `[{"age": 31}]`},
	}

	v := newTestValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(Record{Name: "carol", Raw: []byte(tt.raw)}, time.UTC)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "carol", ve.User)
			assert.NotEmpty(t, ve.Messages)
			assert.Contains(t, ve.Error(), `"carol"`)
		})
	}
}

func TestValidate_ImpossibleCalendarDate(t *testing.T) {
	// Matches the schema pattern but is not a real date.
	v := newTestValidator(t)
	_, err := v.Validate(Record{Name: "dan", Raw: []byte(`{"age": 20, "last_login": "2024-02-30"}`)}, time.UTC)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "last_login")
}

func TestValidateAll_StopsAtFirstInvalid(t *testing.T) {
	v := newTestValidator(t)
	recs := []Record{
		{Name: "a", Raw: []byte(`{"age": 1, "last_login": "2024-01-01"}`)},
		{Name: "b", Raw: []byte(`{"age": -2, "last_login": "2024-01-01"}`)},
		{Name: "c", Raw: []byte(`{"age": "x"}`)},
	}

	users, err := v.ValidateAll(recs, time.UTC)
	require.Error(t, err)
	assert.Nil(t, users)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "b", ve.User)
}

func TestValidateAll_KeepsOrder(t *testing.T) {
	v := newTestValidator(t)
	recs := []Record{
		{Name: "x", Raw: []byte(`{"age": 9, "last_login": "2024-01-01"}`)},
		{Name: "y", Raw: []byte(`{"age": 3, "last_login": "2024-01-01"}`)},
	}

	users, err := v.ValidateAll(recs, time.UTC)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, []int64{9, 3}, users.Ages())
	assert.Equal(t, "x", users[0].Name)
}

func TestNewValidator_CustomSchema(t *testing.T) {
	src := []byte(`
#User: {
	age:        int & >=18
	last_login: string
	...
}
`)
	v, err := NewValidator(src)
	require.NoError(t, err)

	_, err = v.Validate(Record{Name: "kid", Raw: []byte(`{"age": 12, "last_login": "2024-01-01"}`)}, time.UTC)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	u, err := v.Validate(Record{Name: "adult", Raw: []byte(`{"age": 40, "last_login": "2024-01-01"}`)}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(40), u.Age)
}

func TestNewValidator_Errors(t *testing.T) {
	t.Run("syntax", func(t *testing.T) {
		_, err := NewValidator([]byte(`#User: {`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "compile user schema")
	})

	t.Run("missing_definition", func(t *testing.T) {
		_, err := NewValidator([]byte(`#Account: {id: string}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "#User is not defined")
	})
}

func TestDefaultSchema_Embedded(t *testing.T) {
	src := string(DefaultSchema())
	assert.Contains(t, src, "#User")
	assert.Contains(t, src, "last_login")
}

func TestParseLastLogin(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, moscow)},
		{"2024-03-01T10:15", time.Date(2024, 3, 1, 10, 15, 0, 0, moscow)},
		{"2024-03-01T10:15:30", time.Date(2024, 3, 1, 10, 15, 30, 0, moscow)},
		{"2024-03-01 10:15:30", time.Date(2024, 3, 1, 10, 15, 30, 0, moscow)},
		{"2024-03-01T10:15:30.250", time.Date(2024, 3, 1, 10, 15, 30, 250_000_000, moscow)},
		{"2024-03-01T10:15:30Z", time.Date(2024, 3, 1, 10, 15, 30, 0, time.UTC)},
		{"2024-03-01T10:15:30+02:00", time.Date(2024, 3, 1, 8, 15, 30, 0, time.UTC)},
		{"2024-03-01T10:15:30-0500", time.Date(2024, 3, 1, 15, 15, 30, 0, time.UTC)},
		{"2024-03-01T10:15Z", time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLastLogin(tt.in, moscow)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseLastLogin_Invalid(t *testing.T) {
	for _, in := range []string{"", "2024", "2024-13-01", "01.03.2024", "2024-03-01T25:00"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseLastLogin(in, time.UTC)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid last_login")
		})
	}
}
