package engine

import (
	"encoding/json"
	"strconv"
	"strings"
)

// NormalizeAnswer coerces whatever the transport hands us into an integer.
// Malformed input is never an error; it normalizes to 0 so a garbled
// submission reads as a wrong answer rather than a failure.
//
// Rules: absent is 0; text is trimmed and parsed, 0 on failure; fractional
// numbers truncate toward zero; anything else is best-effort, 0 on failure.
func NormalizeAnswer(raw any) int {
	switch v := raw.(type) {
	case nil:
		return 0
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float32:
		return int(v)
	case float64:
		return int(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case json.Number:
		return parseAnswer(v.String())
	case string:
		return parseAnswer(v)
	default:
		return 0
	}
}

func parseAnswer(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	// Fractional text like "12.9" still truncates toward zero.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}
