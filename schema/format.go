package schema

import (
	"fmt"

	graphkb "github.com/bcgsc/graphkb-core"
)

// FormatOptions controls whether FormatRecord fills defaults and how it
// treats properties not declared on the target class. With all fields
// false, an undeclared non-bookkeeping key is a validation error.
type FormatOptions struct {
	// AddDefaults fills properties missing from raw with their declared
	// Default (literal or DefaultFunc), before validation runs.
	AddDefaults bool
	// DropExtra silently discards keys not declared on the class instead
	// of failing.
	DropExtra bool
	// IgnoreExtra passes undeclared keys through unchanged instead of
	// failing or dropping them.
	IgnoreExtra bool
}

// FormatRecord validates and normalizes raw against class's flattened
// property set, per spec §4.1. It never mutates raw; it returns a new
// Record.
func (r *Registry) FormatRecord(class string, raw Record, opts FormatOptions) (Record, error) {
	props, err := r.QueryProperties(class)
	if err != nil {
		return nil, err
	}

	out := make(Record, len(raw))
	for k, v := range raw {
		if _, declared := props[k]; declared {
			continue
		}
		if isBookkeepingKey(k) {
			out[k] = v
			continue
		}
		switch {
		case opts.DropExtra:
			continue
		case opts.IgnoreExtra:
			out[k] = v
		default:
			return nil, graphkb.NewValidationError(class, "unknown property", k)
		}
	}

	for name, prop := range props {
		raw, present := raw[name]
		if !present {
			if opts.AddDefaults && prop.Default != nil {
				out[name] = resolveDefault(prop.Default)
				continue
			}
			if prop.Mandatory {
				return nil, graphkb.NewValidationError(class+"."+name, "missing mandatory property", nil)
			}
			continue
		}
		formatted, err := r.formatValue(class, prop, raw)
		if err != nil {
			return nil, err
		}
		out[name] = formatted
	}
	return out, nil
}

func isBookkeepingKey(k string) bool {
	switch k {
	case graphkb.KeyRID, graphkb.KeyClass, graphkb.KeyCreatedAt, graphkb.KeyCreatedBy,
		graphkb.KeyDeletedAt, graphkb.KeyDeletedBy, graphkb.KeyHistory, graphkb.KeyGroupRestrictions,
		graphkb.KeyOut, graphkb.KeyIn:
		return true
	default:
		return false
	}
}

func resolveDefault(def any) any {
	if fn, ok := def.(DefaultFunc); ok {
		return fn()
	}
	return def
}

// formatValue applies prop's cast (per element, if iterable), then its
// nonEmpty/choices checks, then recurses into embedded values.
func (r *Registry) formatValue(class string, prop *Property, raw any) (any, error) {
	if raw == nil {
		if prop.Nullable {
			return nil, nil
		}
		return nil, graphkb.NewValidationError(class+"."+prop.Name, "property is not nullable", raw)
	}

	if prop.Iterable() {
		elems, ok := raw.([]any)
		if !ok {
			return nil, graphkb.NewValidationError(class+"."+prop.Name, "expected a list", raw)
		}
		if prop.NonEmpty && len(elems) == 0 {
			return nil, graphkb.NewValidationError(class+"."+prop.Name, "must not be empty", raw)
		}
		out := make([]any, len(elems))
		for i, e := range elems {
			v, err := r.castScalar(class, prop, e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	if prop.NonEmpty {
		if s, ok := raw.(string); ok && s == "" {
			return nil, graphkb.NewValidationError(class+"."+prop.Name, "must not be empty", raw)
		}
	}
	return r.castScalar(class, prop, raw)
}

// castScalar applies prop's Cast (the value is kept as given when Cast is
// nil), checks Choices, and recurses into embedded documents.
func (r *Registry) castScalar(class string, prop *Property, raw any) (any, error) {
	if prop.Type.IsEmbedded() {
		return r.formatEmbedded(prop, raw)
	}

	v := raw
	if prop.Cast != nil {
		cast, err := prop.Cast(raw)
		if err != nil {
			return nil, err
		}
		v = cast
	}

	if len(prop.Choices) > 0 {
		if !choiceAllowed(prop.Choices, v) {
			return nil, graphkb.NewValidationError(class+"."+prop.Name, "value not in choices", raw)
		}
	}
	return v, nil
}

func choiceAllowed(choices []any, v any) bool {
	for _, c := range choices {
		if c == v {
			return true
		}
	}
	return false
}

// formatEmbedded requires an explicit "@class" tag on raw and recursively
// formats it against that class's own property set.
func (r *Registry) formatEmbedded(prop *Property, raw any) (any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, graphkb.NewValidationError(prop.Name, "embedded value must be an object", raw)
	}
	class, _ := m[graphkb.KeyClass].(string)
	if class == "" {
		return nil, graphkb.NewValidationError(prop.Name, "embedded value missing @class tag", raw)
	}
	if prop.LinkedClass != "" && class != prop.LinkedClass {
		if sub, err := r.SubClassModel(prop.LinkedClass); err != nil || !contains(sub, class) {
			return nil, graphkb.NewValidationError(prop.Name, fmt.Sprintf("embedded @class %q is not %q or a subclass", class, prop.LinkedClass), raw)
		}
	}
	return r.FormatRecord(class, Record(m), FormatOptions{AddDefaults: true})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
