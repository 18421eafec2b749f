package processor

import (
	"strings"

	"bletext/internal/event"
	"bletext/internal/textual"
)

// Filter selects events by label prefix, e.g. "GAP_EVT_ADV_REPORT" or
// "GAP_EVT_ADV_REPORT/ADV_IND". Exclude wins over include; an empty
// include list keeps everything that is not excluded.
type Filter struct {
	include []string
	exclude []string
}

// NewFilter creates a Filter from include and exclude prefixes
func NewFilter(include, exclude []string) *Filter {
	return &Filter{include: include, exclude: exclude}
}

// Allow reports whether ev passes the filter. Events without a name are
// always let through so the formatter can report them.
func (f *Filter) Allow(ev *event.Object) bool {
	if f == nil {
		return true
	}
	name, ok := event.Name(ev)
	if !ok {
		return true
	}
	advType, _ := event.AdvType(ev)
	return f.AllowLabel(textual.Label(name, advType))
}

// AllowLabel applies the filter to an event label
func (f *Filter) AllowLabel(label string) bool {
	if hasAnyPrefix(label, f.exclude) {
		return false
	}
	if len(f.include) == 0 {
		return true
	}
	return hasAnyPrefix(label, f.include)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
