package httputil

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeList decodes a JSON list that may be delivered either as a bare array
// or wrapped in an envelope object under the given key (DRF-style
// `{"results": [...]}` pagination vs. plain arrays - both exist in the API).
func DecodeList[T any](data []byte, key string) ([]T, error) {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("invalid JSON list: %w", err)
		}
		return items, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	raw, ok := wrapped[key]
	if !ok {
		// Key absent means an empty collection, not an error.
		return nil, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("invalid %q list: %w", key, err)
	}
	return items, nil
}
