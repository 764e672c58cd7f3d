// ABOUTME: Loose value coercion for backend-native record fields
// ABOUTME: Every helper returns a usable default instead of failing
package records

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/dealdesk/models"
)

// timeLayout matches the ISO-8601 form the hosted backend stores.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTime renders t the way createdAt fields are stored.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// Text returns v as a string; missing values become "".
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// Number returns v as a float64; missing or unparsable values become 0.
func Number(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		return ParseNumber(x)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseNumber parses s as a float, defaulting to 0.
func ParseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Int returns v as an int and whether it held one.
func Int(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int(x), true
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Ref returns a relational id, or nil when v is absent, zero, or not an id.
// Lookup objects of the form {"Id": n} are unwrapped.
func Ref(v any) *int {
	if obj, ok := v.(map[string]any); ok {
		v = obj["Id"]
	}
	n, ok := Int(v)
	if !ok || n == 0 {
		return nil
	}
	return &n
}

// ParseRef parses a submitted relational id, defaulting to nil.
func ParseRef(s string) *int {
	return Ref(s)
}

// Owner returns an opaque owner reference, or nil when absent.
func Owner(v any) *string {
	if obj, ok := v.(map[string]any); ok {
		v = obj["Id"]
	}
	s := Text(v)
	if s == "" {
		return nil
	}
	return &s
}

// EncodeOwner writes an owner reference, sending canonical numeric
// references as ints. Anything else, e.g. "007", stays a string.
func EncodeOwner(owner *string) any {
	if owner == nil || *owner == "" {
		return nil
	}
	if n, err := strconv.Atoi(*owner); err == nil && strconv.Itoa(n) == *owner {
		return n
	}
	return *owner
}

// Time parses a stored timestamp, falling back to now.
func Time(v any, now time.Time) time.Time {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return now
		}
		return x
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, x); err == nil {
				return t
			}
		}
	}
	return now
}

// StageOf returns the stage stored in v, defaulting to lead.
func StageOf(v any) models.Stage {
	s := Text(v)
	if s == "" {
		return models.StageLead
	}
	return models.Stage(s)
}
