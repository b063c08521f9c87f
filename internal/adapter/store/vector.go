package store

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EncodeVector serializes a vector to the JSON text form used by every
// store's embedding column.
func EncodeVector(vec []float32) (string, error) {
	if len(vec) == 0 {
		return "", fmt.Errorf("cannot encode an empty vector")
	}
	data, err := json.Marshal(vec)
	if err != nil {
		return "", fmt.Errorf("failed to encode vector: %w", err)
	}
	return string(data), nil
}

// DecodeVector parses a stored vector. The store boundary is not
// guaranteed to hand back a uniform representation: the value may
// already be a float slice, a JSON array, or a JSON string wrapping an
// array. A nil result with nil error means "no vector stored".
func DecodeVector(raw any) ([]float32, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []float32:
		return v, nil
	case []float64:
		vec := make([]float32, len(v))
		for i, f := range v {
			vec[i] = float32(f)
		}
		return vec, nil
	case []any:
		vec := make([]float32, len(v))
		for i, item := range v {
			f, ok := item.(float64)
			if !ok {
				return nil, fmt.Errorf("vector element %d is not a number", i)
			}
			vec[i] = float32(f)
		}
		return vec, nil
	case []byte:
		return decodeVectorText(string(v))
	case string:
		return decodeVectorText(v)
	}
	return nil, fmt.Errorf("unsupported vector representation %T", raw)
}

func decodeVectorText(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil, nil
	}

	// A doubly serialized value is a JSON string containing the array.
	if strings.HasPrefix(s, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(s), &inner); err != nil {
			return nil, fmt.Errorf("failed to decode vector text: %w", err)
		}
		return decodeVectorText(inner)
	}

	var vec []float32
	if err := json.Unmarshal([]byte(s), &vec); err != nil {
		return nil, fmt.Errorf("failed to decode vector text: %w", err)
	}
	if len(vec) == 0 {
		return nil, nil
	}
	return vec, nil
}
