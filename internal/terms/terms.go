// Package terms normalizes free-text queries and classifies their tokens
// into weighted categories. The output is capped at a small term count so
// downstream WHERE clauses stay inside the query engine's complexity limits.
package terms

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Category labels a classified term.
type Category string

const (
	CategoryEmail      Category = "email"
	CategoryProperNoun Category = "proper_noun"
	CategoryLocation   Category = "location"
	CategoryNumeric    Category = "numeric"
	CategoryDescriptor Category = "descriptor"
	CategoryGeneric    Category = "generic"
)

// Term weights by category. Emails identify a client exactly; proper nouns
// are usually names; everything else degrades toward generic text.
const (
	WeightEmail      = 3.0
	WeightProperNoun = 2.0
	WeightNumeric    = 1.8
	WeightLocation   = 1.5
	WeightDescriptor = 1.3
	WeightGeneric    = 1.0
)

// MaxTerms caps the classified output to keep generated WHERE clauses
// within engine complexity limits.
const MaxTerms = 3

// QueryKind describes how exact the query is.
type QueryKind string

const (
	KindExactID    QueryKind = "exact_id"    // Query is a bare number
	KindExactEmail QueryKind = "exact_email" // Query contains an email address
	KindFuzzy      QueryKind = "fuzzy"
)

// ClassifiedTerm is one weighted, engine-safe search term. Query-scoped,
// never persisted.
type ClassifiedTerm struct {
	Term     string
	Weight   float64
	Category Category
}

// Classification is the full result of classifying a query.
type Classification struct {
	Terms []ClassifiedTerm
	Kind  QueryKind
}

var (
	emailRe   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	numericRe = regexp.MustCompile(`^\d{1,4}([/\-]\d{1,4}){0,2}$`)
	digitsRe  = regexp.MustCompile(`^\d+$`)
)

// Normalize rewrites punctuation that breaks LIKE patterns: ampersand and
// plus become "and", slash becomes "or", quotes/semicolons/colons are
// stripped, and whitespace collapses.
func Normalize(query string) string {
	r := strings.NewReplacer(
		"&", " and ",
		"+", " and ",
		"/", " or ",
		`"`, "",
		"'", "",
		";", "",
		":", "",
	)
	return strings.Join(strings.Fields(r.Replace(query)), " ")
}

// Classify normalizes and classifies a raw query into at most MaxTerms
// weighted terms, sorted by descending weight with duplicates removed.
func Classify(query string) Classification {
	return ClassifyWithLimit(query, MaxTerms)
}

// ClassifyWithLimit is Classify with a caller-supplied term cap. A cap of
// zero or less falls back to MaxTerms.
func ClassifyWithLimit(query string, maxTerms int) Classification {
	if maxTerms <= 0 {
		maxTerms = MaxTerms
	}
	normalized := Normalize(query)
	rawTokens := strings.Fields(normalized)

	kind := KindFuzzy
	if len(rawTokens) == 1 && digitsRe.MatchString(rawTokens[0]) {
		kind = KindExactID
	}

	classified := make([]ClassifiedTerm, 0, len(rawTokens))
	seen := make(map[string]int) // term -> index in classified
	for _, tok := range rawTokens {
		if len(tok) < 2 {
			continue
		}
		ct := classifyToken(tok)
		if ct.Category == CategoryEmail {
			kind = KindExactEmail
		}
		if idx, ok := seen[ct.Term]; ok {
			if ct.Weight > classified[idx].Weight {
				classified[idx] = ct
			}
			continue
		}
		seen[ct.Term] = len(classified)
		classified = append(classified, ct)
	}

	sort.SliceStable(classified, func(i, j int) bool {
		return classified[i].Weight > classified[j].Weight
	})
	capped := classified
	if len(capped) > maxTerms {
		capped = capped[:maxTerms]
	}

	// Stop words go after the cap, unless removing them would empty the
	// query; then the first two capped terms stand in.
	filtered := make([]ClassifiedTerm, 0, len(capped))
	for _, ct := range capped {
		if stopWords[ct.Term] {
			continue
		}
		filtered = append(filtered, ct)
	}
	if len(filtered) == 0 {
		n := len(capped)
		if n > 2 {
			n = 2
		}
		filtered = capped[:n]
	}

	return Classification{Terms: filtered, Kind: kind}
}

// classifyToken assigns the highest-priority matching category. Priority is
// email > proper noun > location > date/number > descriptor > generic; note
// classification priority is not the same ordering as weight.
func classifyToken(tok string) ClassifiedTerm {
	lower := strings.ToLower(tok)
	switch {
	case emailRe.MatchString(tok):
		return ClassifiedTerm{Term: lower, Weight: WeightEmail, Category: CategoryEmail}
	case isCapitalized(tok):
		return ClassifiedTerm{Term: lower, Weight: WeightProperNoun, Category: CategoryProperNoun}
	case Locations[lower]:
		return ClassifiedTerm{Term: lower, Weight: WeightLocation, Category: CategoryLocation}
	case numericRe.MatchString(tok):
		return ClassifiedTerm{Term: lower, Weight: WeightNumeric, Category: CategoryNumeric}
	case Descriptors[lower]:
		return ClassifiedTerm{Term: lower, Weight: WeightDescriptor, Category: CategoryDescriptor}
	default:
		return ClassifiedTerm{Term: lower, Weight: WeightGeneric, Category: CategoryGeneric}
	}
}

func isCapitalized(tok string) bool {
	runes := []rune(tok)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// PrimaryTerm derives the single most useful token from a query, skipping
// imperative stop-words so "show me all Hawaii trips" degrades to "hawaii"
// rather than "show". Falls back to the first token when everything is
// imperative.
func PrimaryTerm(query string) string {
	tokens := strings.Fields(strings.ToLower(Normalize(query)))
	if len(tokens) == 0 {
		return ""
	}
	best := ""
	bestWeight := 0.0
	for _, tok := range tokens {
		if len(tok) < 2 || ImperativeWords[tok] || stopWords[tok] {
			continue
		}
		ct := classifyToken(tok)
		if ct.Weight > bestWeight {
			best, bestWeight = tok, ct.Weight
		}
	}
	if best == "" {
		return tokens[0]
	}
	return best
}
