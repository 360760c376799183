// Package report encodes statistics and error objects for the output file.
//
// Output is canonical JSON (RFC 8785) followed by a newline, so the same
// input and reference time always produce byte-identical files. Each write
// returns a domain-separated SHA-256 digest which the run history stores.
package report
