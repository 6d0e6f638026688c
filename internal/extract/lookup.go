package extract

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// First returns the value of the first candidate key present in obj with a
// non-null value.
func First(obj map[string]interface{}, keys ...string) (interface{}, bool) {
	if obj == nil {
		return nil, false
	}
	for _, key := range keys {
		if v, ok := obj[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// FirstString returns the display string of the first candidate key whose
// value is a non-empty scalar.
func FirstString(obj map[string]interface{}, keys ...string) (string, bool) {
	if obj == nil {
		return "", false
	}
	for _, key := range keys {
		if s, ok := Scalar(obj[key]); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// FirstObject returns the first candidate key holding a JSON object
func FirstObject(obj map[string]interface{}, keys ...string) (map[string]interface{}, bool) {
	if obj == nil {
		return nil, false
	}
	for _, key := range keys {
		if m, ok := obj[key].(map[string]interface{}); ok {
			return m, true
		}
	}
	return nil, false
}

// FirstArray returns the first candidate key holding a JSON array
func FirstArray(obj map[string]interface{}, keys ...string) ([]interface{}, bool) {
	if obj == nil {
		return nil, false
	}
	for _, key := range keys {
		if a, ok := obj[key].([]interface{}); ok {
			return a, true
		}
	}
	return nil, false
}

// Objects returns the objects held by v: every object element of an array,
// or v itself when it is a single object.
func Objects(v interface{}) []map[string]interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return []map[string]interface{}{t}
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

// Scalar converts a scalar JSON value into its display string. Objects,
// arrays and null are not scalars.
func Scalar(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// Number converts v to a float when it is numeric or a numeric string.
// NaN and infinities are not numbers here.
func Number(v interface{}) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Truthy reports whether v counts as a set flag
func Truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && !strings.EqualFold(t, "false")
	default:
		f, ok := Number(v)
		if ok {
			return f != 0
		}
		return true
	}
}

// Decode parses JSON text preserving numbers as json.Number
func Decode(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errTrailingData
	}
	return v, nil
}
