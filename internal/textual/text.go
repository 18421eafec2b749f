package textual

import (
	"fmt"
	"strings"

	"bletext/internal/event"
	"bletext/internal/rewrite"
)

const namespacePrefix = "BLE_"

// Text renders ev as one line: header, generic fields, GAP block and
// payload, separated by single spaces. A nil event or one without id or
// name yields "" and an error wrapping ErrInvalidEvent.
func (f *Formatter) Text(ev *event.Object) (string, error) {
	name, err := f.validate(ev)
	if err != nil {
		return "", err
	}
	advType, _ := event.AdvType(ev)

	tokens := []string{Label(name, advType)}

	fields, err := f.Fields(ev)
	if err != nil {
		f.log().Warn("event fields not serialized", "event", name, "error", err)
		return "", fmt.Errorf("serializing %s fields: %w", name, err)
	}
	if len(fields) > 0 {
		tokens = append(tokens, strings.Join(fields, " "))
	}

	gap, err := f.AdvertisingData(ev)
	if err != nil {
		f.log().Warn("advertising data not serialized", "event", name, "error", err)
		return "", fmt.Errorf("serializing %s advertising data: %w", name, err)
	}
	if gap != "" {
		tokens = append(tokens, gap)
	}

	if payload, ok := Payload(ev); ok {
		tokens = append(tokens, payload)
	}

	return strings.Join(tokens, " "), nil
}

func (f *Formatter) validate(ev *event.Object) (string, error) {
	if ev == nil {
		return "", f.invalid("missing event")
	}
	if !event.HasID(ev) {
		return "", f.invalid("missing id")
	}
	name, ok := event.Name(ev)
	if !ok {
		return "", f.invalid("missing name")
	}
	return name, nil
}

func (f *Formatter) invalid(reason string) error {
	f.log().Warn("unknown event received", "reason", reason)
	return fmt.Errorf("%w: %s", ErrInvalidEvent, reason)
}

// Label derives the short event label: name without the BLE_ namespace,
// plus /<adv type> when advType is set.
//
//	Label("BLE_GAP_EVT_ADV_REPORT", "BLE_GAP_ADV_TYPE_ADV_IND") == "GAP_EVT_ADV_REPORT/ADV_IND"
func Label(name, advType string) string {
	label := stripThrough(name, namespacePrefix)
	if advType == "" {
		return label
	}
	return label + "/" + stripThrough(advType, rewrite.PrefixAdvType)
}

// stripThrough removes everything up to and including the first sep
func stripThrough(s, sep string) string {
	if _, after, found := strings.Cut(s, sep); found {
		return after
	}
	return s
}

// Payload renders data.raw as raw:[HEX], or data itself as data:[HEX]
// when the event's data is a plain byte sequence.
func Payload(ev *event.Object) (string, bool) {
	data, ok := event.Data(ev)
	if !ok {
		return "", false
	}

	if obj, ok := data.(*event.Object); ok {
		raw, ok := obj.Get(event.KeyRaw)
		if !ok {
			return "", false
		}
		if b, ok := bytesOf(raw); ok {
			return "raw:[" + hexUpper(b) + "]", true
		}
		return "", false
	}

	if b, ok := bytesOf(data); ok {
		return "data:[" + hexUpper(b) + "]", true
	}
	return "", false
}

// bytesOf accepts []byte or a sequence of integers in 0..255
func bytesOf(v any) ([]byte, bool) {
	switch b := v.(type) {
	case []byte:
		return b, true
	case []any:
		out := make([]byte, len(b))
		for i, item := range b {
			n, ok := item.(int64)
			if !ok || n < 0 || n > 255 {
				return nil, false
			}
			out[i] = byte(n)
		}
		return out, true
	}
	return nil, false
}
