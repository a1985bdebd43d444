package ledger

import (
	"fmt"
	"strings"
)

// Config holds the tunable rules of the statement derivations.
type Config struct {
	// AssociationKeywords mark an unlinked payable as financing an investment
	// when its label contains one of them (case-insensitive).
	AssociationKeywords []string

	// KeywordFallback enables AssociationKeywords for payables without LinkedTo.
	KeywordFallback bool

	// ClosingMarkers identify a retained-earnings entry produced by closing.
	ClosingMarkers []string

	// GuardClosing refuses to close an exercise that already carries a closing entry.
	GuardClosing bool
}

// NewConfig creates a Config with the default rules.
func NewConfig() *Config {
	return &Config{
		AssociationKeywords: []string{"machine", "immobil"},
		KeywordFallback:     true,
		ClosingMarkers:      []string{"closing", "clôture", "cloture"},
		GuardClosing:        false,
	}
}

// ConfigFromOptions parses a flat option map into a Config.
// Supports:
//   - "association_keyword" (repeatable, replaces the defaults)
//   - "keyword_fallback" "TRUE|FALSE"
//   - "closing_marker" (repeatable, replaces the defaults)
//   - "guard_closing" "TRUE|FALSE"
func ConfigFromOptions(options map[string][]string) (*Config, error) {
	cfg := NewConfig()

	if vals := options["association_keyword"]; len(vals) > 0 {
		cfg.AssociationKeywords = normalizeKeywords(vals)
	}
	if vals := options["closing_marker"]; len(vals) > 0 {
		cfg.ClosingMarkers = normalizeKeywords(vals)
	}

	var err error
	if cfg.KeywordFallback, err = boolOption(options, "keyword_fallback", cfg.KeywordFallback); err != nil {
		return nil, err
	}
	if cfg.GuardClosing, err = boolOption(options, "guard_closing", cfg.GuardClosing); err != nil {
		return nil, err
	}

	return cfg, nil
}

func boolOption(options map[string][]string, name string, def bool) (bool, error) {
	vals := options[name]
	if len(vals) == 0 {
		return def, nil
	}
	switch strings.ToUpper(strings.TrimSpace(vals[0])) {
	case "TRUE", "YES", "1":
		return true, nil
	case "FALSE", "NO", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid %s %q, expected TRUE or FALSE", name, vals[0])
}

func normalizeKeywords(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// matchesAssociation reports whether label names an investment financing.
func (c *Config) matchesAssociation(label string) bool {
	return c.KeywordFallback && containsAny(label, c.AssociationKeywords)
}

// isClosingLabel reports whether label carries a closing marker.
func (c *Config) isClosingLabel(label string) bool {
	return containsAny(label, c.ClosingMarkers)
}

func containsAny(label string, keywords []string) bool {
	lower := strings.ToLower(label)
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
