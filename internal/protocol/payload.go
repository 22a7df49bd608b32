package protocol

import (
	"fmt"
	"strconv"
)

// Payload is a decoded flat response object.
type Payload map[string]any

// OK builds a successful response carrying fields.
func OK(fields map[string]any) Payload {
	p := Payload{"result": ResultOK}
	for k, v := range fields {
		p[k] = v
	}
	return p
}

// Failure builds a response whose result marker carries reason.
func Failure(reason string) Payload {
	return Payload{"result": reason}
}

// Result returns the raw result marker and whether it was present.
func (p Payload) Result() (string, bool) {
	v, ok := p["result"]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	if f, ok := Number(v); ok {
		return formatNumber(f), true
	}
	return fmt.Sprint(v), true
}

// IsOK reports whether the result marker equals "OK".
func (p Payload) IsOK() bool {
	r, ok := p.Result()
	return ok && r == ResultOK
}

// Has reports whether key is present.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns key as a string. Numbers are formatted, so numeric ids survive either codec.
func (p Payload) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	}
	if f, ok := Number(v); ok {
		return formatNumber(f), true
	}
	return "", false
}

// Bool returns key as a boolean; absent or non-boolean values are false.
func (p Payload) Bool(key string) bool {
	b, _ := p[key].(bool)
	return b
}

// List returns key as a list.
func (p Payload) List(key string) ([]any, bool) {
	l, ok := p[key].([]any)
	return l, ok
}

// Number converts any JSON or msgpack numeric value to float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// Normalize rewrites every number in v to float64 and every map to
// map[string]any, so msgpack-decoded values look like JSON-decoded ones.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = Normalize(item)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = Normalize(item)
		}
		return out
	case []any:
		for i, item := range t {
			t[i] = Normalize(item)
		}
		return t
	case Payload:
		return Payload(Normalize(map[string]any(t)).(map[string]any))
	}
	if f, ok := Number(v); ok {
		return f
	}
	return v
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
