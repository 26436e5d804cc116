package discovery

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/c360/resourcekit/metric"
)

// ByConvention derives HTTP locations from a base URI and the resource name,
// without any registry: "Purchase" version 2 under base "http://api.test"
// resolves to "http://api.test/v2/purchases". Every lookup succeeds, so a
// ByConvention discoverer never yields NotFound; pair it with deployments
// where routing guarantees the path exists.
type ByConvention struct {
	baseURI string
	metrics *metric.Metrics
}

// ConventionOption configures a ByConvention discoverer.
type ConventionOption func(*ByConvention)

// WithConventionMetrics enables lookup counting.
func WithConventionMetrics(m *metric.Metrics) ConventionOption {
	return func(c *ByConvention) { c.metrics = m }
}

// NewByConvention creates a discoverer rooted at the base URI. A trailing
// slash on the base is trimmed.
func NewByConvention(baseURI string, opts ...ConventionOption) *ByConvention {
	c := &ByConvention{baseURI: strings.TrimRight(baseURI, "/")}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Announce is a no-op: conventional routing needs no registration.
func (c *ByConvention) Announce(_ context.Context, _ Location) error {
	return nil
}

// Discover builds the conventional HTTP location for the resource.
func (c *ByConvention) Discover(_ context.Context, name string, version int) (Location, error) {
	uri := fmt.Sprintf("%s/v%d/%s", c.baseURI, version, PathFragment(name))
	if c.metrics != nil {
		c.metrics.DiscoveryLookups.WithLabelValues(string(KindHTTP)).Inc()
	}
	return HTTP(name, version, uri), nil
}

// PathFragment converts a CamelCase resource name to its conventional URL
// fragment: snake_case, pluralized ("Purchase" -> "purchases",
// "LedgerEntry" -> "ledger_entries").
func PathFragment(name string) string {
	return pluralize(snakeCase(name))
}

func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			// Word boundary unless at the start or inside an acronym run.
			if i > 0 && (!unicode.IsUpper(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func pluralize(word string) string {
	switch {
	case strings.HasSuffix(word, "y") && len(word) > 1 && !isVowel(word[len(word)-2]):
		return word[:len(word)-1] + "ies"
	case strings.HasSuffix(word, "s"), strings.HasSuffix(word, "x"),
		strings.HasSuffix(word, "z"), strings.HasSuffix(word, "ch"),
		strings.HasSuffix(word, "sh"):
		return word + "es"
	default:
		return word + "s"
	}
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
