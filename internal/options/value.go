// SPDX-License-Identifier: MPL-2.0

package options

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

const (
	// KindString is a plain string option value.
	KindString Kind = iota
	// KindBool is a boolean option value.
	KindBool
	// KindInt is an integer option value.
	KindInt
	// KindList is a list of strings, rendered as one flag per element.
	KindList
)

// ErrUnsupportedValue is the sentinel error wrapped by UnsupportedValueError.
var ErrUnsupportedValue = errors.New("unsupported option value")

type (
	// Kind identifies the dynamic type held by a Value.
	Kind int

	// Value is a single option value. The zero value is the empty string.
	Value struct {
		kind Kind
		str  string
		b    bool
		i    int64
		list []string
	}

	// UnsupportedValueError is returned by FromAny for values that cannot be
	// represented as an option (objects, nested lists).
	UnsupportedValueError struct {
		Key   string
		Value any
	}
)

// String builds a string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool builds a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int builds an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// List builds a list Value. The slice is copied.
func List(items ...string) Value { return Value{kind: KindList, list: slices.Clone(items)} }

// Error implements the error interface.
func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("option %q: unsupported value of type %T", e.Key, e.Value)
}

// Unwrap returns ErrUnsupportedValue for errors.Is() compatibility.
func (e *UnsupportedValueError) Unwrap() error { return ErrUnsupportedValue }

// FromAny converts a decoded JSON/TOML value into a Value. key is only used for
// error reporting.
func FromAny(key string, raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return String(""), nil
	case string:
		return String(v), nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < math.MaxInt64 {
			return Int(int64(v)), nil
		}
		return String(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return Int(i), nil
		}
		return String(v.String()), nil
	case []string:
		return List(v...), nil
	case []any:
		items := make([]string, 0, len(v))
		for _, elem := range v {
			scalar, err := FromAny(key, elem)
			if err != nil || scalar.kind == KindList {
				return Value{}, &UnsupportedValueError{Key: key, Value: raw}
			}
			items = append(items, scalar.String())
		}
		return List(items...), nil
	default:
		return Value{}, &UnsupportedValueError{Key: key, Value: raw}
	}
}

// Kind reports the dynamic type of v.
func (v Value) Kind() Kind { return v.kind }

// String renders scalars as they appear on a command line. Lists are joined
// with commas and are meant for display only.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindList:
		return strings.Join(v.list, ",")
	default:
		return v.str
	}
}

// Strings returns the list elements, or the scalar rendering as a one-element slice.
func (v Value) Strings() []string {
	if v.kind == KindList {
		return slices.Clone(v.list)
	}
	return []string{v.String()}
}

// Equal reports whether both values have the same kind and content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	if v.kind == KindList {
		return slices.Equal(v.list, other.list)
	}
	return v.str == other.str && v.b == other.b && v.i == other.i
}
