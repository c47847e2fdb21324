package aos

import (
	"strconv"

	"github.com/homeworkclubco/preschool/pkg/dom"
)

// Markup contract: the trigger attribute marks animation targets; override
// attributes are TriggerAttr + "-" + key.
const (
	// TriggerAttr marks an element as an animation target. Its value is
	// the animation's logical name.
	TriggerAttr = "data-aos"

	keyRootMargin = "root-margin"
	keyThreshold  = "threshold"
	keyOnce       = "once"
	keyID         = "id"
)

// resolveOption reads the per-element override attribute for key, coercing
// the value the way loosely-typed markup expects: exact "true"/"false"
// become booleans, fully numeric values become float64, anything else
// stays a string. An absent attribute yields the fallback unchanged.
// Malformed values are never an error; they degrade to strings.
func resolveOption(el *dom.Element, key string, fallback any) any {
	raw, ok := el.Attr(TriggerAttr + "-" + key)
	if !ok {
		return fallback
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if raw != "" {
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	}
	return raw
}

// asBool collapses a resolved value to a boolean using markup truthiness:
// a non-empty string and a non-zero number are true.
func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return false
	}
}

// asFloat returns the resolved value as a number, or the fallback when the
// value is not numeric.
func asFloat(v any, fallback float64) float64 {
	if n, ok := v.(float64); ok {
		return n
	}
	return fallback
}

// asString renders a resolved value for use in group keys and event names.
// Numbers format without an exponent so keys stay readable.
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
