package mountain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ParseInches converts an upstream numeric field into inches. The undocumented
// feeds report measurements inconsistently as numbers or numeric-looking
// strings; anything unparseable or negative collapses to 0 so the zero-default
// policy stays in one place.
func ParseInches(v any) float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if f < 0 {
		return 0
	}
	return f
}

// FlexInches is a JSON field that may arrive as a number, a numeric string,
// or null. Invalid values decode to 0 rather than failing the whole payload.
type FlexInches float64

func (f *FlexInches) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0
			return nil
		}
		*f = FlexInches(ParseInches(s))
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		*f = 0
		return nil
	}
	*f = FlexInches(ParseInches(n))
	return nil
}

// In returns the value as a plain float64.
func (f FlexInches) In() float64 {
	return float64(f)
}
