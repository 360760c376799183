package user

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Record is one unvalidated entry of the users object.
type Record struct {
	Name string
	Raw  []byte
}

// ParseRecords splits a users document into records.
//
// Syntax errors are reported as *ParseError. A document that parses but is
// not a JSON object is reported as *ValidationError. Records keep document
// order; a repeated name keeps its first position and its last value.
func ParseRecords(data []byte) ([]Record, error) {
	// encoding/json reports the byte offset of a syntax error, gjson does not.
	var syntaxCheck json.RawMessage
	if err := json.Unmarshal(data, &syntaxCheck); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, &ParseError{Offset: syntaxErr.Offset, Err: err}
		}
		return nil, &ParseError{Err: err}
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, &ValidationError{
			Document: true,
			Messages: []string{fmt.Sprintf("expected an object of users, got %s", describe(doc))},
		}
	}

	var records []Record
	index := make(map[string]int)
	doc.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		raw := []byte(value.Raw)
		if i, ok := index[name]; ok {
			records[i].Raw = raw
			return true
		}
		index[name] = len(records)
		records = append(records, Record{Name: name, Raw: raw})
		return true
	})

	return records, nil
}

// collapseKeys re-renders r with repeated object keys merged: the first
// occurrence fixes the position, the last supplies the value.
func collapseKeys(r gjson.Result) []byte {
	var buf bytes.Buffer
	writeCollapsed(&buf, r)
	return buf.Bytes()
}

func writeCollapsed(buf *bytes.Buffer, r gjson.Result) {
	switch {
	case r.IsObject():
		var keys []string
		raws := make(map[string]string)
		values := make(map[string]gjson.Result)
		r.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			if _, ok := values[name]; !ok {
				keys = append(keys, name)
				raws[name] = key.Raw
			}
			values[name] = value
			return true
		})
		buf.WriteByte('{')
		for i, name := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(raws[name])
			buf.WriteByte(':')
			writeCollapsed(buf, values[name])
		}
		buf.WriteByte('}')
	case r.IsArray():
		buf.WriteByte('[')
		for i, elem := range r.Array() {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCollapsed(buf, elem)
		}
		buf.WriteByte(']')
	default:
		buf.WriteString(r.Raw)
	}
}

// describe names the JSON kind of a gjson result for error messages.
func describe(r gjson.Result) string {
	switch {
	case r.IsArray():
		return "array"
	case r.Type == gjson.String:
		return "string"
	case r.Type == gjson.Number:
		return "number"
	case r.Type == gjson.True, r.Type == gjson.False:
		return "boolean"
	case r.Type == gjson.Null:
		return "null"
	default:
		return "unknown value"
	}
}
