// Package jsondoc holds the JSON encoding shared by the document store backends.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"reflect"

	"class-booking/internal/usecase/shared"
)

func Encode(fields shared.Fields) ([]byte, error) {
	if fields == nil {
		fields = shared.Fields{}
	}
	return json.Marshal(fields)
}

func Decode(data []byte) (shared.Fields, error) {
	fields := shared.Fields{}
	if len(bytes.TrimSpace(data)) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Normalize round-trips fields through JSON so values compare the way a
// remote store would see them (every number becomes float64).
func Normalize(fields shared.Fields) (shared.Fields, error) {
	data, err := Encode(fields)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Merge returns base with every key of patch overwritten.
func Merge(base, patch shared.Fields) shared.Fields {
	out := make(shared.Fields, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Matches reports whether every key of expect holds the same value in fields.
// Both maps must be normalized.
func Matches(fields, expect shared.Fields) bool {
	for k, want := range expect {
		got, ok := fields[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}
