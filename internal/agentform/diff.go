package agentform

import (
	"bytes"
	"encoding/json"
	"errors"
)

var ErrNoChanges = errors.New("agentform: no changes")

// Normalize returns v with every null, empty string, empty object and empty
// array removed, recursively. Objects that become empty are removed too.
// Values are expected in the generic form produced by encoding/json.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if n := Normalize(val); !isEmpty(n) {
				out[k] = n
			}
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, val := range t {
			if n := Normalize(val); !isEmpty(n) {
				out = append(out, n)
			}
		}
		return out
	default:
		return v
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

// canonical serializes v after normalization. encoding/json writes object
// keys in sorted order, so key order never affects the result.
func canonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(Normalize(generic))
}

// Changed reports whether current differs from original once both are
// normalized. Values that cannot be serialized are treated as changed.
func Changed(original, current any) bool {
	a, err := canonical(original)
	if err != nil {
		return true
	}
	b, err := canonical(current)
	if err != nil {
		return true
	}
	return !bytes.Equal(a, b)
}
