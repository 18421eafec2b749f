package rewrite

import (
	"fmt"
	"log/slog"
	"regexp"
)

// Rule rewrites a symbolic name or value matched by Pattern.
// OnMatch receives the full input and the submatches of Pattern.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	OnMatch func(input string, groups []string) (string, error)
}

// RuleSet applies an ordered list of rules; the first match wins and
// anything unmatched is humanized. A RuleSet is immutable and safe for
// concurrent use.
type RuleSet struct {
	rules  []Rule
	logger *slog.Logger
}

// Option configures a RuleSet
type Option func(*RuleSet)

// WithLogger sets the logger receiving rule failure diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(rs *RuleSet) { rs.logger = l }
}

// WithRules replaces the default rule list
func WithRules(rules []Rule) Option {
	return func(rs *RuleSet) { rs.rules = rules }
}

// New creates a RuleSet with DefaultRules unless WithRules is given
func New(opts ...Option) *RuleSet {
	rs := &RuleSet{rules: DefaultRules()}
	for _, fn := range opts {
		fn(rs)
	}
	rs.rules = append([]Rule(nil), rs.rules...)
	return rs
}

var defaultSet = New()

// Default returns the process-wide RuleSet, logging through slog.Default()
func Default() *RuleSet { return defaultSet }

// Rewrite translates a symbolic constant into a short readable token using
// the default rules.
func Rewrite(value string) string { return defaultSet.Rewrite(value) }

// Rewrite translates value with the first matching rule, or humanizes it.
// A rule that fails is logged and the value is humanized instead.
func (rs *RuleSet) Rewrite(value string) string {
	if out, ok := rs.apply(value); ok {
		return out
	}
	return Humanize(value)
}

func (rs *RuleSet) apply(value string) (out string, ok bool) {
	var current string
	defer func() {
		if r := recover(); r != nil {
			rs.log().Warn("rewrite rule panicked", "rule", current, "value", value, "panic", fmt.Sprint(r))
			out, ok = "", false
		}
	}()

	for _, rule := range rs.rules {
		groups := rule.Pattern.FindStringSubmatch(value)
		if groups == nil {
			continue
		}
		current = rule.Name
		res, err := rule.OnMatch(value, groups)
		if err != nil {
			rs.log().Warn("rewrite rule failed", "rule", rule.Name, "value", value, "error", err)
			return "", false
		}
		return res, true
	}
	return "", false
}

func (rs *RuleSet) log() *slog.Logger {
	if rs.logger != nil {
		return rs.logger
	}
	return slog.Default()
}

// Symbolic constant prefixes understood by the default rules
const (
	PrefixAdvFlag  = "BLE_GAP_ADV_FLAG"
	PrefixADType   = "BLE_GAP_AD_TYPE_"
	PrefixAddrType = "BLE_GAP_ADDR_TYPE_"
	PrefixAdvType  = "BLE_GAP_ADV_TYPE_"
	PrefixRole     = "BLE_GAP_ROLE_"
	PrefixHCI      = "BLE_HCI_"
	PrefixGATT     = "BLE_GATT_STATUS_"
)

var (
	macPattern       = regexp.MustCompile(`[0-9a-fA-F]{2}(?::[0-9a-fA-F]{2}){5}`)
	timestampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d+Z`)
)

// DefaultRules returns the BLE GAP/HCI/GATT rules in priority order.
// The returned slice is a copy; its patterns are compiled once and shared.
func DefaultRules() []Rule {
	return append([]Rule(nil), defaultRules...)
}

var defaultRules = []Rule{
	prefixRule("adv-flag", `^`+PrefixAdvFlag+`S?_(.*)`),
	prefixRule("ad-type", `^`+PrefixADType+`(.*)`),
	prefixRule("addr-type", `^`+PrefixAddrType+`(.*)`),
	prefixRule("adv-type", `^`+PrefixAdvType+`(.*)`),
	{Name: "mac-address", Pattern: macPattern, OnMatch: passThrough},
	{Name: "timestamp", Pattern: timestampPattern, OnMatch: passThrough},
	prefixRule("role", `^`+PrefixRole+`(.*)`),
	prefixRule("hci", `^`+PrefixHCI+`(.*)`),
	prefixRule("gatt-status", `^`+PrefixGATT+`(.*)`),
}

func prefixRule(name, expr string) Rule {
	return Rule{
		Name:    name,
		Pattern: regexp.MustCompile(expr),
		OnMatch: humanizeGroup,
	}
}

func humanizeGroup(_ string, groups []string) (string, error) {
	if len(groups) < 2 {
		return "", fmt.Errorf("expected 1 submatch, got %d", len(groups)-1)
	}
	return Humanize(groups[1]), nil
}

func passThrough(input string, _ []string) (string, error) {
	return input, nil
}
