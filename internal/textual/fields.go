package textual

import (
	"strings"

	"bletext/internal/event"
)

// isReserved reports keys that Text renders outside the generic fields
func isReserved(key string) bool {
	switch key {
	case event.KeyID, event.KeyData, event.KeyName:
		return true
	}
	return false
}

// Fields serializes every non-reserved key of container, in insertion
// order, into name:value tokens. Nested containers become name:[tokens]
// and sequences name:[[group],[group]].
func (f *Formatter) Fields(container *event.Object) ([]string, error) {
	return f.fields(container, 0)
}

func (f *Formatter) fields(obj *event.Object, depth int) ([]string, error) {
	if depth > MaxDepth {
		return nil, ErrTooDeep
	}

	tokens := make([]string, 0, obj.Len())
	for _, key := range obj.Keys() {
		if isReserved(key) {
			continue
		}
		value, _ := obj.Get(key)
		token, err := f.field(f.rewrite(key), value, depth)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func (f *Formatter) field(name string, value any, depth int) (string, error) {
	switch v := value.(type) {
	case nil:
		return name + ":null", nil
	case []any:
		groups, err := f.sequence(v, depth+1)
		if err != nil {
			return "", err
		}
		return name + ":[" + groups + "]", nil
	case *event.Object:
		nested, err := f.fields(v, depth+1)
		if err != nil {
			return "", err
		}
		return name + ":[" + strings.Join(nested, " ") + "]", nil
	case []byte:
		return name + ":[" + hexUpper(v) + "]", nil
	case string:
		return name + ":" + f.rewrite(v), nil
	default:
		return name + ":" + scalarString(v), nil
	}
}

// sequence renders each element as a bracketed group, comma separated
func (f *Formatter) sequence(items []any, depth int) (string, error) {
	if depth > MaxDepth {
		return "", ErrTooDeep
	}

	groups := make([]string, 0, len(items))
	for _, item := range items {
		group, err := f.element(item, depth)
		if err != nil {
			return "", err
		}
		groups = append(groups, "["+group+"]")
	}
	return strings.Join(groups, ","), nil
}

// element renders the inside of one sequence group. Scalars go through
// the rewrite rules the same way a scalar field value does.
func (f *Formatter) element(item any, depth int) (string, error) {
	switch v := item.(type) {
	case *event.Object:
		tokens, err := f.fields(v, depth+1)
		if err != nil {
			return "", err
		}
		return strings.Join(tokens, " "), nil
	case []any:
		return f.sequence(v, depth+1)
	case nil:
		return "null", nil
	case []byte:
		return hexUpper(v), nil
	case string:
		return f.rewrite(v), nil
	default:
		return scalarString(v), nil
	}
}
