package event

import (
	"reflect"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is an insertion-ordered string-keyed container.
// Values are normalized on Set: maps become *Object (keys sorted),
// slices other than []byte become []any.
type Object struct {
	m *orderedmap.OrderedMap[string, any]
}

// NewObject creates an empty Object
func NewObject() *Object {
	return &Object{m: orderedmap.New[string, any]()}
}

// FromMap converts a plain map into an Object. Keys are sorted so that
// the result does not depend on Go map iteration order.
func FromMap(src map[string]any) *Object {
	o := NewObject()
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		o.Set(k, src[k])
	}
	return o
}

// Set stores value under key, keeping the position of an existing key.
// It returns the receiver so calls can be chained.
func (o *Object) Set(key string, value any) *Object {
	if o.m == nil {
		o.m = orderedmap.New[string, any]()
	}
	o.m.Set(key, normalize(value))
	return o
}

// Get returns the value stored under key
func (o *Object) Get(key string) (any, bool) {
	if o == nil || o.m == nil {
		return nil, false
	}
	return o.m.Get(key)
}

// Has reports whether key is present, even with a nil value
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Keys returns the keys in insertion order
func (o *Object) Keys() []string {
	if o == nil || o.m == nil {
		return nil
	}
	keys := make([]string, 0, o.m.Len())
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of keys
func (o *Object) Len() int {
	if o == nil || o.m == nil {
		return 0
	}
	return o.m.Len()
}

// String returns the value under key if it is a string
func (o *Object) String(key string) (string, bool) {
	v, ok := o.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Object returns the value under key if it is a nested Object
func (o *Object) Object(key string) (*Object, bool) {
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	nested, ok := v.(*Object)
	return nested, ok && nested != nil
}

// Bytes returns the value under key if it is a byte sequence
func (o *Object) Bytes(key string) ([]byte, bool) {
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func normalize(value any) any {
	switch v := value.(type) {
	case nil, string, bool, int64, float64, []byte, *Object, []any:
		return v
	case map[string]any:
		return FromMap(v)
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case float32:
		return float64(v)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return value
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return FromMap(m)
	}

	// Remaining scalars (uint64, named types) are rendered as-is
	return value
}
