package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// objectField is one key of a JSON object, kept with its raw value.
type objectField struct {
	Key   string
	Value json.RawMessage
}

// orderedObject decodes a JSON object keeping its keys in document order.
// Dominant-entry tie-breaks depend on that order, which a Go map loses.
// Anything other than an object decodes as empty; a repeated key keeps its
// first value.
type orderedObject []objectField

func (o *orderedObject) UnmarshalJSON(b []byte) error {
	*o = nil
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode object: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}

	seen := make(map[string]bool)
	var out orderedObject
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode object key: %w", err)
		}
		key, _ := kt.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode object value %q: %w", key, err)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, objectField{Key: key, Value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode object end: %w", err)
	}
	*o = out
	return nil
}

// numberFrom reads a finite number from a bare JSON number, a numeric
// string, or, when field is set, that field of an object.
func numberFrom(raw json.RawMessage, field string) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		return finite(strconv.ParseFloat(strings.TrimSpace(s), 64))
	case '{':
		if field == "" {
			return 0, false
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return 0, false
		}
		inner, ok := obj[field]
		if !ok {
			return 0, false
		}
		return numberFrom(inner, "")
	default:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0, false
		}
		return finite(f, nil)
	}
}

// floatField reads an optional numeric field of an object; null or absent
// gives nil.
func floatField(raw json.RawMessage, field string) *float64 {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	inner, ok := obj[field]
	if !ok {
		return nil
	}
	v, ok := numberFrom(inner, "")
	if !ok {
		return nil
	}
	return &v
}

func finite(f float64, err error) (float64, bool) {
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
