// Package session provides the per-conversation execution state:
// the variable store, token interpolation and the session entity.
// It has zero external dependencies.
package session

import (
	"fmt"
	"regexp"
	"strconv"
)

// Vars is the per-session variable store. Values are restricted to
// strings, numbers and booleans by convention; anything else is
// stringified with fmt on interpolation.
type Vars map[string]any

// tokenPattern matches {{name}} with optional whitespace inside the
// braces. Variable names are case-sensitive.
var tokenPattern = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)

// Get returns the value bound to name.
func (v Vars) Get(name string) (any, bool) {
	val, ok := v[name]
	return val, ok
}

// Set binds name to value.
func (v Vars) Set(name string, value any) {
	v[name] = value
}

// String returns the stringified value bound to name, or "" when the
// name is unbound.
func (v Vars) String(name string) string {
	val, ok := v[name]
	if !ok {
		return ""
	}
	return formatValue(val)
}

// Clone returns an independent copy of the store.
func (v Vars) Clone() Vars {
	c := make(Vars, len(v))
	for k, val := range v {
		c[k] = val
	}
	return c
}

// Merge copies entries from other into the store. Existing keys are
// kept: a webhook response must not clobber variables the flow has
// already bound.
func (v Vars) Merge(other map[string]any) {
	for k, val := range other {
		if _, exists := v[k]; !exists {
			v[k] = val
		}
	}
}

// Interpolate replaces every {{name}} token in template with the
// stringified variable value. Unresolved names become the empty
// string, never the literal token. Substitution is a single pass:
// values are not re-interpolated, so a value containing {{x}} stays
// literal.
func Interpolate(template string, vars Vars) string {
	return tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := tokenPattern.FindStringSubmatch(token)[1]
		return vars.String(name)
	})
}

// formatValue stringifies a variable value. Numbers render without a
// trailing ".0" so {{count}} reads naturally in message text.
func formatValue(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}
