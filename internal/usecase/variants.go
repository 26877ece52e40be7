package usecase

import (
	"regexp"
	"strings"
)

// nonAlphanumericPattern strips everything outside [A-Za-z0-9].
var nonAlphanumericPattern = regexp.MustCompile(`[^A-Za-z0-9]`)

// GenerateVariants expands an ingredient name into the plausible
// lookup-key spellings. Record keys upstream were authored with
// inconsistent casing and spacing, so probing every variant buys recall
// without needing a fuzzy index.
//
// The result is deduplicated and ordered: identity first, then the
// spaces-stripped, capitalized, and alphanumeric-only forms. Callers
// rely on this order for first-match-wins merging, so it is stable for
// a given input.
func GenerateVariants(ingredient string) []string {
	variants := make([]string, 0, 4)
	seen := make(map[string]bool)

	add := func(v string) {
		if !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	// 1. The input exactly as given.
	add(ingredient)

	// 2. Spaces removed, when the input has any.
	if strings.Contains(ingredient, " ") {
		add(strings.ReplaceAll(ingredient, " ", ""))
	}

	// 3. First letter uppercased, rest unchanged.
	if ingredient != "" {
		add(strings.ToUpper(ingredient[:1]) + ingredient[1:])
	}

	// 4. Alphanumeric characters only, when that differs from the input.
	if stripped := nonAlphanumericPattern.ReplaceAllString(ingredient, ""); stripped != ingredient {
		add(stripped)
	}

	return variants
}
