// Package jsonutil wraps sonic so every package in the module encodes and
// decodes JSON with the same configuration. See Example for the round trip
// used by request bodies and responses.
package jsonutil

import (
	"io"

	"github.com/bytedance/sonic"
)

// api mirrors encoding/json semantics (HTML escaping, sorted map keys) so
// rendered payloads stay stable across runs.
var api = sonic.ConfigStd

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// MarshalIndent is like Marshal but applies prefix and indent to each line.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

// Valid reports whether data holds exactly one JSON value, ignoring
// surrounding whitespace.
func Valid(data []byte) bool {
	return api.Valid(data)
}

// Encode writes the JSON encoding of v to w followed by a newline.
func Encode(w io.Writer, v any) error {
	return api.NewEncoder(w).Encode(v)
}

// Decode reads the next JSON value from r and stores it in v.
func Decode(r io.Reader, v any) error {
	return api.NewDecoder(r).Decode(v)
}
