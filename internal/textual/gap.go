package textual

import (
	"strings"

	"bletext/internal/event"
	"bletext/internal/rewrite"
)

// FlagsKey is the advertising data field holding the GAP flags
const FlagsKey = rewrite.PrefixADType + "FLAGS"

// AdvertisingData renders the GAP fields of the event's data as
// gap:[adTypeFlags:[..] name:value ..]. The flags always come first.
// It returns "" when data holds no flags and no BLE_GAP_AD_TYPE_ fields.
func (f *Formatter) AdvertisingData(ev *event.Object) (string, error) {
	data, ok := ev.Object(event.KeyData)
	if !ok {
		return "", nil
	}

	var tokens []string
	if value, ok := data.Get(FlagsKey); ok {
		flags, err := f.flags(value)
		if err != nil {
			return "", err
		}
		tokens = append(tokens, "adTypeFlags:["+flags+"]")
	}

	for _, key := range data.Keys() {
		if !strings.Contains(key, rewrite.PrefixADType) || strings.Contains(key, FlagsKey) {
			continue
		}
		value, _ := data.Get(key)
		s, err := opaque(value, 0)
		if err != nil {
			return "", err
		}
		tokens = append(tokens, f.rewrite(key)+":"+s)
	}

	if len(tokens) == 0 {
		return "", nil
	}
	return "gap:[" + strings.Join(tokens, " ") + "]", nil
}

// flags rewrites symbolic flag names; any other item is rendered opaquely
func (f *Formatter) flags(value any) (string, error) {
	var items []any
	switch v := value.(type) {
	case nil:
	case []any:
		items = v
	default:
		items = []any{v}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, f.rewrite(s))
			continue
		}
		rendered, err := opaque(item, 1)
		if err != nil {
			return "", err
		}
		out = append(out, rendered)
	}
	return strings.Join(out, ","), nil
}

// opaque renders an advertising field value as given, without rewriting
func opaque(value any, depth int) (string, error) {
	if depth > MaxDepth {
		return "", ErrTooDeep
	}

	switch v := value.(type) {
	case nil:
		return "null", nil
	case string:
		return v, nil
	case []byte:
		return hexUpper(v), nil
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			s, err := opaque(item, depth+1)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	case *event.Object:
		parts := make([]string, 0, v.Len())
		for _, key := range v.Keys() {
			item, _ := v.Get(key)
			s, err := opaque(item, depth+1)
			if err != nil {
				return "", err
			}
			parts = append(parts, key+":"+s)
		}
		return "[" + strings.Join(parts, " ") + "]", nil
	default:
		return scalarString(v), nil
	}
}
