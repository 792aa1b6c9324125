package core

import "strings"

const RedactedValue = "[REDACTED]"

// RedactSensitiveMap returns a deep copy of metadata with credential-like
// members replaced by RedactedValue.
func RedactSensitiveMap(metadata map[string]any) map[string]any {
	if len(metadata) == 0 {
		return map[string]any{}
	}
	return redactMap(metadata)
}

func redactMap(source map[string]any) map[string]any {
	target := make(map[string]any, len(source))
	for key, value := range source {
		if isSensitiveKey(key) {
			target[key] = RedactedValue
			continue
		}
		target[key] = redactValue(value)
	}
	return target
}

func redactValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return redactMap(typed)
	case Args:
		return redactMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = redactValue(typed[i])
		}
		return out
	default:
		return value
	}
}

var sensitiveKeyTokens = []string{
	"password",
	"secret",
	"token",
	"pin",
	"mfa",
	"public_key",
	"credential",
	"username",
	"authorization",
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" || isTraceabilityKey(key) {
		return false
	}
	for _, token := range sensitiveKeyTokens {
		if strings.Contains(key, token) {
			return true
		}
	}
	return false
}

func isTraceabilityKey(key string) bool {
	switch key {
	case "operation",
		"institution_id",
		"request_id",
		"error_code",
		"error_type",
		"account_ids":
		return true
	default:
		return false
	}
}
