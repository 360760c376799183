// Package user loads and validates user records.
//
// The input is a JSON object mapping user name to attributes:
//
//	{
//	  "alice": {"age": 31, "last_login": "2024-03-01T10:15:00"},
//	  "bob":   {"age": 45, "last_login": "2023-07-19"}
//	}
//
// Loading happens in two steps. ParseRecords checks JSON syntax and splits
// the object into records, preserving document order. A Validator then
// checks each record against the #User CUE definition (user.cue, embedded)
// and decodes it into a User.
//
// Timestamps without an explicit offset are interpreted in the location
// passed to Validate, which defaults to time.Local at the CLI layer.
package user
