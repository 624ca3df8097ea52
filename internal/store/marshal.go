package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamps are stored as UTC RFC 3339 text with nanoseconds.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// marshalArgs stores argument lists as a JSON array.
func marshalArgs(args []string) (string, error) {
	if args == nil {
		args = []string{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return string(data), nil
}

func unmarshalArgs(data string) ([]string, error) {
	var args []string
	if err := json.Unmarshal([]byte(data), &args); err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	return args, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
