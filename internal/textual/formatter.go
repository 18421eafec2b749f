// Package textual renders decoded BLE events as single log lines such as
//
//	GAP_EVT_ADV_REPORT/ADV_IND advType:advInd rssi:-40 gap:[adTypeFlags:[leGeneralDiscMode] completeLocalName:Thingy] raw:[0201]
package textual

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cast"

	"bletext/internal/rewrite"
)

var (
	// ErrInvalidEvent is returned for a missing event or one without id or name
	ErrInvalidEvent = errors.New("invalid event")

	// ErrTooDeep is returned when nesting exceeds MaxDepth, which also
	// catches cyclic containers
	ErrTooDeep = errors.New("event nesting too deep")
)

// MaxDepth bounds recursion into nested containers and sequences
const MaxDepth = 64

// Formatter turns events into text. It holds no per-call state and is
// safe for concurrent use.
type Formatter struct {
	rules  *rewrite.RuleSet
	logger *slog.Logger
}

// Option configures a Formatter
type Option func(*Formatter)

// WithRules sets the rule set used for names and values
func WithRules(rs *rewrite.RuleSet) Option {
	return func(f *Formatter) { f.rules = rs }
}

// WithLogger sets the logger receiving diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(f *Formatter) { f.logger = l }
}

// New creates a Formatter. Without WithRules it uses the default rules,
// logging rule failures to the same logger as the formatter. Without a
// logger it logs to slog.Default() at the time of each call.
func New(opts ...Option) *Formatter {
	f := &Formatter{}
	for _, fn := range opts {
		fn(f)
	}
	if f.rules == nil {
		if f.logger == nil {
			f.rules = rewrite.Default()
		} else {
			f.rules = rewrite.New(rewrite.WithLogger(f.logger))
		}
	}
	return f
}

func (f *Formatter) log() *slog.Logger {
	if f.logger != nil {
		return f.logger
	}
	return slog.Default()
}

func (f *Formatter) rewrite(s string) string {
	return f.rules.Rewrite(s)
}

// hexUpper renders bytes as uppercase hex without separators
func hexUpper(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// scalarString renders numbers, bools and other leaf values
func scalarString(v any) string {
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}
