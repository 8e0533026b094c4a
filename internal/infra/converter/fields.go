package converter

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Stored field names. They match the documents created by the original web client.
const (
	FieldDay       = "day"
	FieldTime      = "time"
	FieldSlotsLeft = "slots_left"

	FieldStudentName = "studentName"
	FieldSlotID      = "slotId"
	FieldBookedAt    = "bookedAt"
)

// IntField reads an integral number regardless of how the backend decoded it.
func IntField(fields map[string]any, key string) (int, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("field %q missing", key)
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("field %q is not an integer: %v", key, v)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("field %q is not an integer: %w", key, err)
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("field %q is not an integer: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("field %q has unsupported type %T", key, raw)
	}
}

func StringField(fields map[string]any, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("field %q missing", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q has unsupported type %T", key, raw)
	}
	return s, nil
}

func TimeField(fields map[string]any, key string) (time.Time, error) {
	s, err := StringField(fields, key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("field %q is not a timestamp: %w", key, err)
	}
	return t, nil
}
