package calendar_tools

import (
	"fmt"
	"time"
)

// stringArg extracts an optional string argument, defaulting when absent,
// empty, or of the wrong type.
func stringArg(input map[string]any, key, fallback string) string {
	if v, ok := input[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// intArg extracts an optional integer argument. JSON numbers arrive as
// float64.
func intArg(input map[string]any, key string, fallback int64) int64 {
	switch v := input[key].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	}
	return fallback
}

// timeArg extracts a required RFC3339 timestamp argument.
func timeArg(input map[string]any, key string) (time.Time, error) {
	s, ok := input[key].(string)
	if !ok || s == "" {
		return time.Time{}, fmt.Errorf("%s is required", key)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return t, nil
}

// windowArgs extracts the optional timeMin/timeMax pair, defaulting to
// now .. now+7d.
func windowArgs(input map[string]any) (time.Time, time.Time, error) {
	timeMin := time.Now()
	timeMax := timeMin.Add(defaultWindow)

	if s, ok := input["timeMin"].(string); ok && s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid timeMin: %w", err)
		}
		timeMin = t
		timeMax = t.Add(defaultWindow)
	}
	if s, ok := input["timeMax"].(string); ok && s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid timeMax: %w", err)
		}
		timeMax = t
	}
	return timeMin, timeMax, nil
}

// stringSliceArg extracts an optional array-of-strings argument. Non-string
// elements are skipped.
func stringSliceArg(input map[string]any, key string) []string {
	raw, ok := input[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
