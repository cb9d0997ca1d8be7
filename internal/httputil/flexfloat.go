package httputil

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexFloat decodes a JSON value that should be a number but may arrive as a
// number, a numeric string, or null, depending on which backend endpoint
// produced it. Anything non-numeric decodes to 0 rather than failing the
// whole payload, matching the lenient parseFloat handling the API's other
// consumers apply.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexFloat(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			*f = FlexFloat(n)
			return nil
		}
	}

	*f = 0
	return nil
}

// Float64 returns the underlying value.
func (f FlexFloat) Float64() float64 {
	return float64(f)
}
