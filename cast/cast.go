// Package cast provides the deterministic, total value-cast functions used
// by the schema registry and filter tree to coerce raw JSON input into the
// Go types the query builder and record operations expect (spec §4.2).
//
// Every function here is total over its documented domain: it either
// returns a converted value or a *graphkb.ValidationError describing the
// offending input. None of them panic.
package cast

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	graphkb "github.com/bcgsc/graphkb-core"
)

// Integer converts v to an int. Accepts int, int64, float64 (if integral),
// json.Number-shaped strings, and numeric strings.
func Integer(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t != float64(int64(t)) {
			return 0, graphkb.NewValidationError("integer", "not an integral number", v)
		}
		return int(t), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, graphkb.NewValidationError("integer", "cannot parse as integer", v)
		}
		return n, nil
	default:
		return 0, graphkb.NewValidationError("integer", fmt.Sprintf("unsupported type %T", v), v)
	}
}

// DecimalInteger is an alias for Integer kept distinct in the public API
// because the spec names it separately: it casts values that may arrive
// as a decimal-looking string ("12.0") that is nonetheless integral.
func DecimalInteger(v any) (int, error) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			if f != float64(int64(f)) {
				return 0, graphkb.NewValidationError("decimalInteger", "not an integral decimal", v)
			}
			return int(f), nil
		}
		return 0, graphkb.NewValidationError("decimalInteger", "cannot parse as decimal integer", v)
	}
	return Integer(v)
}

// booleanTrue and booleanFalse enumerate the total, case-insensitive domain
// castBoolean accepts per spec §4.2 and §8's testable property.
var (
	booleanTrue  = map[string]bool{"t": true, "true": true, "1": true}
	booleanFalse = map[string]bool{"f": true, "false": true, "0": true}
)

// Boolean converts v to a bool. Accepts a native bool, and case-insensitive
// "t"/"true"/"1"/"f"/"false"/"0"/"null" (the last maps to false, mirroring
// a tri-state-as-bool column default). Any other input is a ValidationError.
func Boolean(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case nil:
		return false, nil
	case string:
		lower := strings.ToLower(strings.TrimSpace(t))
		if lower == "null" {
			return false, nil
		}
		if booleanTrue[lower] {
			return true, nil
		}
		if booleanFalse[lower] {
			return false, nil
		}
	}
	return false, graphkb.NewValidationError("boolean", "not a recognized boolean literal", v)
}

// ridPattern matches a bare "cluster:position" RID, with an optional
// leading '#' (the wire form used by the store, e.g. "#12:34").
var ridPattern = regexp.MustCompile(`^#?(\d+):(\d+)$`)

// ToRID extracts a normalized "cluster:position" record identifier string
// from v. Accepts a string matching ridPattern, or a map[string]any
// carrying a "recordId" key. Other map types (including named map types
// such as graphkb.Record) are rejected.
func ToRID(v any) (string, error) {
	switch t := v.(type) {
	case string:
		m := ridPattern.FindStringSubmatch(t)
		if m == nil {
			return "", graphkb.NewValidationError("recordId", "not a valid record identifier", v)
		}
		return m[1] + ":" + m[2], nil
	case map[string]any:
		if rid, ok := t["recordId"]; ok {
			return ToRID(rid)
		}
	}
	return "", graphkb.NewValidationError("recordId", "missing recordId field", v)
}

// RangeInt casts v to an int and verifies it falls within [min, max]
// inclusive.
func RangeInt(v any, min, max int) (int, error) {
	n, err := Integer(v)
	if err != nil {
		return 0, err
	}
	if n < min || n > max {
		return 0, graphkb.NewValidationError("rangeInt", fmt.Sprintf("must be between %d and %d", min, max), v)
	}
	return n, nil
}
