package user

import (
	_ "embed"
	"fmt"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
	"github.com/tidwall/gjson"
)

//go:embed user.cue
var defaultSchema []byte

// DefaultSchema returns the embedded CUE source defining #User.
func DefaultSchema() []byte {
	return defaultSchema
}

// Validator checks records against a #User CUE definition.
//
// A Validator owns a cue.Context and is not safe for concurrent use.
type Validator struct {
	ctx *cue.Context
	def cue.Value
}

// NewValidator compiles CUE source that must define #User.
func NewValidator(src []byte) (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename("user.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile user schema: %w", err)
	}

	def := v.LookupPath(cue.ParsePath("#User"))
	if !def.Exists() {
		return nil, fmt.Errorf("compile user schema: #User is not defined")
	}
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("compile user schema: %w", err)
	}

	return &Validator{ctx: ctx, def: def}, nil
}

// DefaultValidator returns a Validator for the embedded schema.
func DefaultValidator() (*Validator, error) {
	return NewValidator(defaultSchema)
}

// Validate checks one record and decodes it into a User.
// Zone-less last_login values are interpreted in loc. Repeated keys within
// the record keep their last value, as repeated names do in ParseRecords.
func (v *Validator) Validate(rec Record, loc *time.Location) (User, error) {
	raw := rec.Raw
	if gjson.ValidBytes(raw) {
		raw = collapseKeys(gjson.ParseBytes(raw))
	}

	expr, err := cuejson.Extract(rec.Name, raw)
	if err != nil {
		return User{}, &ValidationError{User: rec.Name, Messages: []string{err.Error()}}
	}

	unified := v.def.Unify(v.ctx.BuildExpr(expr))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return User{}, &ValidationError{User: rec.Name, Messages: cueMessages(err)}
	}

	var attrs struct {
		Age       int64  `json:"age"`
		LastLogin string `json:"last_login"`
	}
	if err := unified.Decode(&attrs); err != nil {
		return User{}, &ValidationError{User: rec.Name, Messages: cueMessages(err)}
	}

	lastLogin, err := ParseLastLogin(attrs.LastLogin, loc)
	if err != nil {
		return User{}, &ValidationError{User: rec.Name, Messages: []string{err.Error()}}
	}

	return User{Name: rec.Name, Age: attrs.Age, LastLogin: lastLogin}, nil
}

// ValidateAll validates records in order and stops at the first failure.
func (v *Validator) ValidateAll(recs []Record, loc *time.Location) (Users, error) {
	users := make(Users, 0, len(recs))
	for _, rec := range recs {
		u, err := v.Validate(rec, loc)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// cueMessages flattens a CUE error list into one message per error.
func cueMessages(err error) []string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return []string{err.Error()}
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return msgs
}
