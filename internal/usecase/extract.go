package usecase

import (
	"regexp"
	"strings"

	"github.com/genericrx/backend/internal/domain"
)

// Compiled patterns for the pattern-scan extraction strategy. Upstream
// retailer records are free prose, so each field is pulled out by the
// first matching rule and falls back to its placeholder otherwise.
var (
	// Retailer name rules, tried in order.
	availableAtPattern = regexp.MustCompile(`(?i)available at\s+([^,.;!?]+)`)
	isRetailerPattern  = regexp.MustCompile(`(?i)([^,.;!?]+?)\s+is the retailer`)

	// First dollar amount in the text, e.g. "$12.99".
	dollarPattern = regexp.MustCompile(`\$\d+(?:\.\d+)?`)

	// Quantity phrase following "for ", up to a sentence terminator.
	quantityPattern = regexp.MustCompile(`(?i)\bfor\s+([^.;!?]+)`)

	// Usage phrase following "used to", up to a period.
	usagePattern = regexp.MustCompile(`(?i)\bused to\s+([^.]+)`)

	// Side-effect phrase following "side effects include", up to a period.
	sideEffectsPattern = regexp.MustCompile(`(?i)side effects include\s+([^.]+)`)

	// Combined price + quantity clause, e.g. "$12.99 for 30 tablets".
	// Deliberately the only pattern tried when splitting a price field:
	// if it fails, the whole field stays the price and no quantity is
	// derived.
	priceClausePattern = regexp.MustCompile(`^\s*(\$\d+(?:\.\d+)?)\s+for\s+(.+?)\s*$`)

	// Side-effect list separators: commas, or "and" used as a
	// conjunction (requires surrounding spaces, so proper nouns like
	// "Anderson" are untouched).
	sideEffectSeparator = regexp.MustCompile(`\s*,\s*|\s+and\s+`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ExtractBrandFields parses a brand-drug record into a BrandInfo. Brand
// records use the delimited "name: value; name: value" layout. The
// function is total: malformed or empty input yields placeholder
// values, never an error.
func ExtractBrandFields(text string) domain.BrandInfo {
	fields := parseDelimited(text)

	info := domain.BrandInfo{
		Manufacturer:     pickField(fields, "manufacturer"),
		ActiveIngredient: pickField(fields, "ingredient", "active ingredient"),
		Price:            pickField(fields, "price"),
		SideEffects:      pickField(fields, "side effects"),
	}

	if effects := fields["side effects"]; effects != "" {
		info.SideEffects = NormalizeSideEffects(effects)
	}

	// A combined price field like "$12.99 for 30 tablets" splits into
	// price and dosage; an explicit dosage field still wins.
	price, clause := SplitPriceClause(info.Price)
	info.Price = price
	info.Dosage = fields["dosage"]
	if info.Dosage == "" {
		info.Dosage = clause
	}

	return info
}

// ExtractSummaryFields parses an "<ingredient>:generic" summary record.
// Summary records use the delimited layout with a few historical field
// aliases. The ingredient is always the caller's resolved ingredient
// string, independent of what the record body says.
func ExtractSummaryFields(text, ingredient string) domain.GenericSummary {
	fields := parseDelimited(text)

	summary := domain.GenericSummary{
		Ingredient:  ingredient,
		Usage:       pickField(fields, "usage", "uses", "effects"),
		SideEffects: pickField(fields, "side effects"),
	}

	if effects := fields["side effects"]; effects != "" {
		summary.SideEffects = NormalizeSideEffects(effects)
	}

	return summary
}

// ExtractRetailerFields parses a free-prose retailer record into an
// offer. fallbackRetailer is used when no retailer-name rule matches,
// typically the retailer component of the record's key. Total function.
func ExtractRetailerFields(text, fallbackRetailer string) domain.RetailerOffer {
	offer := domain.RetailerOffer{
		Retailer: fallbackRetailer,
		Price:    domain.NotFound,
	}

	if m := availableAtPattern.FindStringSubmatch(text); m != nil {
		offer.Retailer = strings.TrimSpace(m[1])
	} else if m := isRetailerPattern.FindStringSubmatch(text); m != nil {
		offer.Retailer = strings.TrimSpace(m[1])
	}

	if m := dollarPattern.FindString(text); m != "" {
		offer.Price = m
	}

	if m := quantityPattern.FindStringSubmatch(text); m != nil {
		offer.Quantity = strings.TrimSpace(m[1])
	}

	return offer
}

// ExtractProseSummary pulls usage and side-effect phrases out of a
// free-prose record. Used to synthesize a generic summary when no
// dedicated summary record exists. Missing phrases yield placeholders.
func ExtractProseSummary(text string) (usage, sideEffects string) {
	usage = domain.NotFound
	sideEffects = domain.NotFound

	if m := usagePattern.FindStringSubmatch(text); m != nil {
		usage = strings.TrimSpace(m[1])
	}

	if m := sideEffectsPattern.FindStringSubmatch(text); m != nil {
		sideEffects = NormalizeSideEffects(m[1])
	}

	return usage, sideEffects
}

// SplitPriceClause splits a combined price field like
// "$12.99 for 30 tablets" into the dollar amount and the trailing
// clause. The combined pattern is tried exactly once: when it does not
// match, the whole input is kept as the price and the clause is empty.
func SplitPriceClause(price string) (string, string) {
	m := priceClausePattern.FindStringSubmatch(price)
	if m == nil {
		return price, ""
	}
	return m[1], strings.TrimSpace(m[2])
}

// NormalizeSideEffects rewrites a side-effects phrase as a comma
// separated list: whitespace is collapsed, segments split on commas or
// the conjunction "and", empty segments dropped, and the rest rejoined
// with ", ".
func NormalizeSideEffects(text string) string {
	collapsed := whitespacePattern.ReplaceAllString(text, " ")

	var kept []string
	for _, segment := range sideEffectSeparator.Split(collapsed, -1) {
		segment = strings.TrimSpace(segment)
		if segment != "" {
			kept = append(kept, segment)
		}
	}

	return strings.Join(kept, ", ")
}

// parseDelimited splits a delimited record body into a field map. The
// text is split on ";"; each segment containing ":" contributes one
// field, keyed by the trimmed, case-folded prefix.
func parseDelimited(text string) map[string]string {
	fields := make(map[string]string)

	for _, segment := range strings.Split(text, ";") {
		idx := strings.Index(segment, ":")
		if idx < 0 {
			continue
		}

		name := strings.ToLower(strings.TrimSpace(segment[:idx]))
		value := strings.TrimSpace(segment[idx+1:])
		if name == "" {
			continue
		}

		fields[name] = value
	}

	return fields
}

// pickField resolves a field from its known aliases in precedence
// order, returning the placeholder when none carries a value.
func pickField(fields map[string]string, aliases ...string) string {
	for _, alias := range aliases {
		if value := fields[alias]; value != "" {
			return value
		}
	}
	return domain.NotFound
}
