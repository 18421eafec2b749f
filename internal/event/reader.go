package event

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/buger/jsonparser"
)

// ErrInputFormat is returned when input is neither a JSON array of events nor JSONL
var ErrInputFormat = errors.New("unsupported input format")

// Reader reads decoded BLE events from JSON or JSONL files.
// Object keys keep their document order.
type Reader struct {
	events []*Object
}

// NewReaderFromFile creates a Reader from a file path
func NewReaderFromFile(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return NewReader(data)
}

// NewReader creates a Reader from raw bytes, auto-detecting a JSON array vs JSONL
func NewReader(data []byte) (*Reader, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &Reader{events: []*Object{}}, nil
	}

	switch data[0] {
	case '[':
		return parseArray(data)
	case '{':
		return parseLines(data)
	}

	return nil, fmt.Errorf("%w: expected JSON array or object, got: %c", ErrInputFormat, data[0])
}

func parseArray(data []byte) (*Reader, error) {
	var events []*Object
	var firstErr error

	eventNum := 0
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		eventNum++
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = fmt.Errorf("event %d: %w", eventNum, err)
			return
		}
		if dataType != jsonparser.Object {
			firstErr = fmt.Errorf("%w: event %d: expected object, got %s", ErrInputFormat, eventNum, dataType)
			return
		}
		obj, err := decodeObject(value)
		if err != nil {
			firstErr = fmt.Errorf("event %d: %w", eventNum, err)
			return
		}
		events = append(events, obj)
	})
	if err != nil {
		return nil, fmt.Errorf("parsing event array: %w", err)
	}
	if firstErr != nil {
		return nil, firstErr
	}

	return &Reader{events: events}, nil
}

func parseLines(data []byte) (*Reader, error) {
	var events []*Object

	for i, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if line[0] != '{' {
			return nil, fmt.Errorf("%w: line %d: expected object, got: %c", ErrInputFormat, i+1, line[0])
		}
		obj, err := decodeObject(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		events = append(events, obj)
	}

	return &Reader{events: events}, nil
}

// DecodeObject decodes a single JSON object into an Object
func DecodeObject(data []byte) (*Object, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("%w: expected JSON object", ErrInputFormat)
	}
	return decodeObject(data)
}

func decodeObject(data []byte) (*Object, error) {
	obj := NewObject()
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		// ObjectEach hands out keys already unescaped
		k := string(key)
		v, err := decodeValue(value, dataType)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		obj.Set(k, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeValue(value []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		return s, err
	case jsonparser.Number:
		if i, err := jsonparser.ParseInt(value); err == nil {
			return i, nil
		}
		f, err := jsonparser.ParseFloat(value)
		return f, err
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(value)
		return b, err
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Object:
		obj, err := decodeObject(value)
		if err != nil {
			return nil, err
		}
		if b, ok := bufferBytes(obj); ok {
			return b, nil
		}
		return obj, nil
	case jsonparser.Array:
		return decodeArray(value)
	}
	return nil, fmt.Errorf("unsupported JSON value %q", value)
}

func decodeArray(data []byte) ([]any, error) {
	items := []any{}
	var firstErr error

	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = err
			return
		}
		v, err := decodeValue(value, dataType)
		if err != nil {
			firstErr = fmt.Errorf("[%d]: %w", len(items), err)
			return
		}
		items = append(items, v)
	})
	if err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return items, nil
}

// bufferBytes recognizes the JSON form of a Node.js Buffer:
// {"type":"Buffer","data":[1,2,255]}
func bufferBytes(obj *Object) ([]byte, bool) {
	if obj.Len() != 2 {
		return nil, false
	}
	if t, _ := obj.String("type"); t != "Buffer" {
		return nil, false
	}
	v, _ := obj.Get("data")
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}

	out := make([]byte, len(items))
	for i, item := range items {
		n, ok := item.(int64)
		if !ok || n < 0 || n > 255 {
			return nil, false
		}
		out[i] = byte(n)
	}
	return out, true
}

// AllEvents returns all events as a slice
func (r *Reader) AllEvents() []*Object {
	return r.events
}

// Writer writes formatted events, one per line
type Writer struct {
	w io.Writer
}

// NewWriter creates a new Writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteLine outputs a single line followed by a newline
func (w *Writer) WriteLine(line string) error {
	_, err := io.WriteString(w.w, line+"\n")
	return err
}
