// Package harness runs conformance scenarios against the userstats pipeline.
//
// A scenario fixes the reference time and the input document, runs the full
// pipeline (path checks, parsing, schema validation, statistics, output)
// and checks assertions against the bytes written to the output file.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: mixed_population
//	description: "Users spread over every offline bucket"
//	now: 2024-06-01T12:00:00Z
//	timezone: UTC            # optional, zone for naive last_login values
//	schema: adult.cue        # optional, relative to the scenario file
//	users:                   # or input: with a raw JSON document
//	  - name: a
//	    age: 20
//	    offline_days: 1
//	  - name: b
//	    age: 25
//	    last_login: "2024-05-27T12:00:00Z"
//	assertions:
//	  - type: stats
//	    expect: { avg_age: 22, lt_week_offline_users_average_age: 22 }
//	  - type: status
//	    status: ok
//
// # Assertion Types
//
//   - stats: output is a statistics object whose fields include expect
//   - empty: output is the empty object
//   - error: output is an error object with the given code (and user, offset)
//   - status: the recorded run has the given status
//
// # Deterministic Testing
//
// Each scenario runs with a fixed clock, in its own temporary directory and
// with a fresh in-memory history store, so output is byte-identical across
// runs and can be compared against golden files.
package harness
