// Package fieldmap translates partial-update request bodies (camelCase JSON keys)
// into SQL SET assignments through a statically declared table per entity.
// Keys missing from the table are rejected.
package fieldmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid value")
)

// Decoder turns the raw JSON value of one field into the value bound to the SQL parameter.
type Decoder func(raw json.RawMessage) (any, error)

type Field struct {
	Column string
	Decode Decoder
	// ReadOnly fields are accepted (clients often send back whole objects) but never written.
	ReadOnly bool
}

// Table maps the JSON key of a field to its column.
type Table map[string]Field

type Assignment struct {
	Key    string
	Column string
	Value  any
}

// Build validates body against the table and returns the assignments ordered by column name.
func (t Table) Build(body map[string]json.RawMessage) ([]Assignment, error) {
	assignments := make([]Assignment, 0, len(body))
	for key, raw := range body {
		field, ok := t[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, key)
		}
		if field.ReadOnly {
			continue
		}
		value, err := field.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s", ErrInvalidValue, key, err)
		}
		assignments = append(assignments, Assignment{
			Key:    key,
			Column: field.Column,
			Value:  value,
		})
	}

	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].Column < assignments[j].Column
	})
	return assignments, nil
}

// SetClause renders "col_a = $1, col_b = $2" and the matching args.
func SetClause(assignments []Assignment) (string, []any) {
	parts := make([]string, 0, len(assignments))
	args := make([]any, 0, len(assignments))
	for i, a := range assignments {
		parts = append(parts, a.Column+" = $"+strconv.Itoa(i+1))
		args = append(args, a.Value)
	}
	return strings.Join(parts, ", "), args
}

// Verify checks that every json key of the struct has a table entry and vice versa.
func Verify(t Table, v any) error {
	rt := reflect.TypeOf(v)
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return fmt.Errorf("verify: %s is not a struct", rt)
	}

	tags := make(map[string]bool)
	for i := 0; i < rt.NumField(); i++ {
		name, _, _ := strings.Cut(rt.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		tags[name] = true
		if _, ok := t[name]; !ok {
			return fmt.Errorf("verify: %s.%s has no table entry", rt.Name(), name)
		}
	}
	for key := range t {
		if !tags[key] {
			return fmt.Errorf("verify: table key %s is not a field of %s", key, rt.Name())
		}
	}
	return nil
}

func String() Decoder {
	return func(raw json.RawMessage) (any, error) {
		var s string
		if err := strictUnmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	}
}

// NonEmptyString is String, but rejects blank values.
func NonEmptyString() Decoder {
	return func(raw json.RawMessage) (any, error) {
		var s string
		if err := strictUnmarshal(raw, &s); err != nil {
			return nil, err
		}
		if strings.TrimSpace(s) == "" {
			return nil, errors.New("must not be empty")
		}
		return s, nil
	}
}

// OneOf accepts only the listed string values.
func OneOf(allowed ...string) Decoder {
	return func(raw json.RawMessage) (any, error) {
		var s string
		if err := strictUnmarshal(raw, &s); err != nil {
			return nil, err
		}
		for _, a := range allowed {
			if s == a {
				return s, nil
			}
		}
		return nil, fmt.Errorf("must be one of %v", allowed)
	}
}

// NonNegativeInt decodes whole numbers >= 0.
func NonNegativeInt() Decoder {
	return func(raw json.RawMessage) (any, error) {
		var n int
		if err := strictUnmarshal(raw, &n); err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, errors.New("must not be negative")
		}
		return n, nil
	}
}

func Bool() Decoder {
	return func(raw json.RawMessage) (any, error) {
		var b bool
		if err := strictUnmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	}
}

func Time() Decoder {
	return func(raw json.RawMessage) (any, error) {
		var ts time.Time
		if err := strictUnmarshal(raw, &ts); err != nil {
			return nil, err
		}
		return ts, nil
	}
}

// JSONOf validates the value against T and returns it re-encoded, for JSONB columns.
func JSONOf[T any]() Decoder {
	return func(raw json.RawMessage) (any, error) {
		var v T
		if err := strictUnmarshal(raw, &v); err != nil {
			return nil, err
		}
		normalized, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(normalized), nil
	}
}

func strictUnmarshal(raw json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return errors.New("must not be null")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
