package transform

import (
	"strings"

	"bletext/internal/event"
)

// Redacted replaces the value of a secret field
const Redacted = "REDACTED"

// maxDepth stops the walk on cyclic containers; the formatter rejects
// anything nested this deep anyway
const maxDepth = 64

// SecretFields lists field names carrying pairing and encryption key material
var SecretFields = map[string]bool{
	"ltk":     true, // long term key
	"irk":     true, // identity resolving key
	"csrk":    true, // connection signature resolving key
	"passkey": true,
	"p_pk":    true, // LESC public key
	"pk":      true,
	"sk":      true,
	"dhkey":   true,
	"oob":     true,
}

// IsSecretField returns true if the field name indicates key material
func IsSecretField(name string) bool {
	lower := strings.ToLower(name)
	return SecretFields[lower]
}

// StripSecrets returns a copy of obj with every secret field's value
// replaced by Redacted, recursively. Keys keep their position. Boolean
// values are kept: sec_params.oob only says whether OOB data is available.
func StripSecrets(obj *event.Object) *event.Object {
	return stripObject(obj, 0)
}

func stripObject(obj *event.Object, depth int) *event.Object {
	if obj == nil || depth > maxDepth {
		return obj
	}

	result := event.NewObject()
	for _, k := range obj.Keys() {
		v, _ := obj.Get(k)
		if IsSecretField(k) {
			if _, isBool := v.(bool); !isBool && v != nil {
				result.Set(k, Redacted)
				continue
			}
		}
		result.Set(k, stripValue(v, depth+1))
	}
	return result
}

func stripValue(v any, depth int) any {
	switch nested := v.(type) {
	case *event.Object:
		return stripObject(nested, depth)
	case []any:
		return stripSecretsFromSlice(nested, depth)
	}
	return v
}

func stripSecretsFromSlice(s []any, depth int) []any {
	if depth > maxDepth {
		return s
	}
	result := make([]any, len(s))
	for i, v := range s {
		result[i] = stripValue(v, depth+1)
	}
	return result
}
