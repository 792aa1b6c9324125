package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Args are the caller-supplied arguments of an operation, keyed by the
// payload member they end up in.
type Args map[string]any

func (a Args) Has(key string) bool {
	if a == nil {
		return false
	}
	value, ok := a[key]
	return ok && value != nil
}

// String returns the trimmed string form of key, or "" when absent.
func (a Args) String(key string) string {
	if !a.Has(key) {
		return ""
	}
	switch typed := a[key].(type) {
	case string:
		return strings.TrimSpace(typed)
	case fmt.Stringer:
		return strings.TrimSpace(typed.String())
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}

// Raw returns the string form of key exactly as the caller supplied it.
// Credentials and tokens go through Raw so they reach the wire unchanged.
func (a Args) Raw(key string) string {
	if !a.Has(key) {
		return ""
	}
	switch typed := a[key].(type) {
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}

// Strings returns key as a string list. A single string becomes a one
// element list.
func (a Args) Strings(key string) []string {
	if !a.Has(key) {
		return nil
	}
	switch typed := a[key].(type) {
	case []string:
		return append([]string(nil), typed...)
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if strings.TrimSpace(typed) == "" {
			return nil
		}
		return []string{typed}
	default:
		return nil
	}
}

// Int returns key as an int. Values decoded from JSON arrive as float64 or
// json.Number and are accepted when integral.
func (a Args) Int(key string) (int, bool) {
	if !a.Has(key) {
		return 0, false
	}
	return toInt(a[key])
}

func (a Args) Bool(key string) (bool, bool) {
	if !a.Has(key) {
		return false, false
	}
	switch typed := a[key].(type) {
	case bool:
		return typed, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		return parsed, err == nil
	default:
		return false, false
	}
}

func (a Args) Clone() Args {
	if a == nil {
		return Args{}
	}
	out := make(Args, len(a))
	for key, value := range a {
		out[key] = value
	}
	return out
}

func toInt(value any) (int, bool) {
	switch typed := value.(type) {
	case int:
		return typed, true
	case int32:
		return int(typed), true
	case int64:
		return int(typed), true
	case float64:
		if typed != math.Trunc(typed) {
			return 0, false
		}
		return int(typed), true
	case json.Number:
		parsed, err := typed.Int64()
		if err != nil {
			return 0, false
		}
		return int(parsed), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
