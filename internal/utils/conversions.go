package utils

import "strings"

// StringValue returns v when it holds a string and "" for any other type,
// including nil.
func StringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// TrimmedString is StringValue with surrounding whitespace removed.
func TrimmedString(v any) string {
	return strings.TrimSpace(StringValue(v))
}
