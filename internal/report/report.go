package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/roach88/userstats/internal/stats"
)

// Error codes written to the output file.
const (
	CodeInvalidJSON = "E201" // input is not valid JSON
	CodeValidation  = "E202" // a user record failed schema validation
)

// Messages paired with the error codes above.
const (
	MessageInvalidJSON = "Invalid JSON file provided"
	MessageValidation  = "Validation error for user items"
)

// DomainReport separates report digests from other SHA-256 uses.
const DomainReport = "userstats/report/v1"

// EncodeSummary renders s as a canonical JSON line.
// A nil summary (no users) renders as the empty object.
func EncodeSummary(s *stats.Summary) ([]byte, error) {
	fields := map[string]any{}
	if s != nil {
		fields = s.Fields()
	}
	return encodeLine(fields)
}

// EncodeError renders a structured error object as a canonical JSON line:
//
//	{"error":{"code":"E201","details":{...},"message":"..."},"status":"error"}
//
// details is omitted when nil.
func EncodeError(code, message string, details map[string]any) ([]byte, error) {
	errObj := map[string]any{
		"code":    code,
		"message": message,
	}
	if details != nil {
		errObj["details"] = details
	}
	return encodeLine(map[string]any{
		"status": "error",
		"error":  errObj,
	})
}

// Output is what was written to an output file.
type Output struct {
	Data   []byte
	Digest string
}

// WriteSummary writes the encoded summary to path.
func WriteSummary(path string, s *stats.Summary) (*Output, error) {
	data, err := EncodeSummary(s)
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	return writeFile(path, data)
}

// WriteError writes the encoded error object to path.
func WriteError(path, code, message string, details map[string]any) (*Output, error) {
	data, err := EncodeError(code, message, details)
	if err != nil {
		return nil, fmt.Errorf("encode error object: %w", err)
	}
	return writeFile(path, data)
}

// Digest computes SHA256(DomainReport + 0x00 + data) as lowercase hex.
func Digest(data []byte) string {
	h := sha256.New()
	h.Write([]byte(DomainReport))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func encodeLine(v map[string]any) ([]byte, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func writeFile(path string, data []byte) (*Output, error) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return &Output{Data: data, Digest: Digest(data)}, nil
}
