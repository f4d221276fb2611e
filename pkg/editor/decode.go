package editor

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// looseInt decodes a JSON number or a numeric string. Older generator
// revisions wrote form input values as strings.
type looseInt struct {
	Value int
	Set   bool
}

func (n *looseInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		str = strings.TrimSpace(str)
		if str == "" {
			return nil
		}
		v, err := strconv.Atoi(str)
		if err != nil {
			return fmt.Errorf("not an integer: %q", str)
		}
		n.Value, n.Set = v, true
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	f = math.Floor(f)
	if f < math.MinInt || f >= math.MaxInt {
		return fmt.Errorf("number out of range: %s", s)
	}
	n.Value, n.Set = int(f), true
	return nil
}

func (n looseInt) or(def int) int {
	if !n.Set {
		return def
	}
	return n.Value
}

// unwrap accepts either a flat document or one wrapped in a single key
// ({"<id>": {...}}, the legacy layout). isBody decides whether an object is
// the document itself. The wrapping key is returned when present.
func unwrap(data []byte, isBody func(map[string]json.RawMessage) bool) (json.RawMessage, string, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if isBody(top) {
		return data, "", nil
	}
	if len(top) == 1 {
		for key, inner := range top {
			var body map[string]json.RawMessage
			if err := json.Unmarshal(inner, &body); err == nil && isBody(body) {
				return inner, key, nil
			}
		}
	}
	return nil, "", fmt.Errorf("%w: unrecognized document layout", ErrInvalidFormat)
}

func hasAnyKey(keys ...string) func(map[string]json.RawMessage) bool {
	return func(m map[string]json.RawMessage) bool {
		for _, k := range keys {
			if _, ok := m[k]; ok {
				return true
			}
		}
		return false
	}
}

func decodeBody(body json.RawMessage, v any, what string) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidFormat, what, err)
	}
	return nil
}
