// Package logger provides structured logging for confhelper.
package logger

import (
	"log/slog"
	"strings"
)

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"apikey",
	"api_key",
	"private_key",
	"credential",
	"bearer",
}

// RedactedValue is the placeholder for redacted sensitive data.
const RedactedValue = "***REDACTED***"

// redactSensitive replaces the value of an attribute whose key suggests
// sensitive content. Groups are walked recursively.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	if a.Value.Kind() == slog.KindString && a.Value.String() != "" && IsSensitiveKey(a.Key) {
		return slog.String(a.Key, RedactedValue)
	}
	return a
}

// IsSensitiveKey checks if a key name suggests sensitive content.
// Only the last segment of a dotted key is inspected.
func IsSensitiveKey(key string) bool {
	if i := strings.LastIndex(key, "."); i >= 0 {
		key = key[i+1:]
	}
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// RedactTree returns a copy of a configuration tree in which every
// non-empty leaf stored under a sensitive key is replaced by RedactedValue.
// The input is never modified.
func RedactTree(tree map[string]any) map[string]any {
	if tree == nil {
		return nil
	}
	out := make(map[string]any, len(tree))
	for k, v := range tree {
		out[k] = redactValue(k, v)
	}
	return out
}

func redactValue(key string, v any) any {
	switch val := v.(type) {
	case map[string]any:
		return RedactTree(val)
	case []any:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = redactValue(key, item)
		}
		return items
	case nil:
		return nil
	case string:
		if val != "" && IsSensitiveKey(key) {
			return RedactedValue
		}
		return val
	default:
		if IsSensitiveKey(key) {
			return RedactedValue
		}
		return val
	}
}
