// Package protocol defines the flat JSON wire contract of the cook session
// store. Every operation is its own Go type; the flag-presence dispatch of the
// wire format is confined to Fields and the Decode functions.
package protocol

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Endpoint paths.
const (
	ReadPath   = "/cookfiledata"
	MutatePath = "/updatecookfile"
)

// ResultOK is the result marker of a successful response.
const ResultOK = "OK"

var (
	// ErrNoOperation is returned when a request carries no operation flag.
	ErrNoOperation = errors.New("no operation flag present")
	// ErrAmbiguousOperation is returned when more than one operation flag is present.
	ErrAmbiguousOperation = errors.New("more than one operation flag present")
	// ErrMissingField is returned when an operation lacks a required field.
	ErrMissingField = errors.New("missing required field")
)

// Request is anything that can be sent to the store.
type Request interface {
	// Operation names the request for logs and in-flight keys.
	Operation() string
	// Fields returns the flat wire object.
	Fields() map[string]any
}

func missing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}

// presentFlags returns the names of the flags in candidates that occur in m, sorted.
func presentFlags(m map[string]any, candidates ...string) []string {
	var found []string
	for _, name := range candidates {
		if _, ok := m[name]; ok {
			found = append(found, name)
		}
	}
	sort.Strings(found)
	return found
}

func exactlyOne(m map[string]any, candidates ...string) (string, error) {
	found := presentFlags(m, candidates...)
	switch len(found) {
	case 0:
		return "", ErrNoOperation
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousOperation, strings.Join(found, ", "))
	}
}

func requireString(m map[string]any, field string) (string, error) {
	v, ok := m[field]
	if !ok || v == nil {
		return "", missing(field)
	}
	switch s := v.(type) {
	case string:
		if s == "" {
			return "", missing(field)
		}
		return s, nil
	case float64:
		return formatNumber(s), nil
	}
	return "", fmt.Errorf("field %s: expected string, got %T", field, v)
}

// optionalString reads a string field that may be empty (comment text, titles).
func optionalString(m map[string]any, field string) (string, error) {
	v, ok := m[field]
	if !ok {
		return "", missing(field)
	}
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %s: expected string, got %T", field, v)
	}
	return s, nil
}
