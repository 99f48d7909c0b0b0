// Package utils provides common utility functions.
package utils

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Coerce converts a loosely typed value into its string form.
// It reports false for nil and for composite values (maps, slices, structs
// without a String method), which have no meaningful scalar form.
func Coerce(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case *string:
		if val == nil {
			return "", false
		}

		return *val, true
	case json.Number:
		return val.String(), true
	case []byte:
		return string(val), true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case time.Time:
		if val.IsZero() {
			return "", false
		}

		return val.Format(time.RFC3339), true
	case fmt.Stringer:
		return val.String(), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "", false
		}

		return Coerce(rv.Elem().Interface())
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Func, reflect.Chan:
		return "", false
	}

	return fmt.Sprint(v), true
}

// CoerceTrimmed coerces v and trims surrounding whitespace.
// An empty result reports false.
func CoerceTrimmed(v any) (string, bool) {
	s, ok := Coerce(v)
	if !ok {
		return "", false
	}

	s = strings.TrimSpace(s)

	return s, s != ""
}

// OptionalString returns a pointer to the trimmed string form of v, or nil
// when v is absent or blank.
func OptionalString(v any) *string {
	s, ok := CoerceTrimmed(v)
	if !ok {
		return nil
	}

	return &s
}

// FirstNonEmpty returns the first value whose trimmed string form is non-empty.
func FirstNonEmpty(values ...any) string {
	for _, v := range values {
		if s, ok := CoerceTrimmed(v); ok {
			return s
		}
	}

	return ""
}

// NormalizeWhitespace replaces runs of whitespace with a single space.
func NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}
