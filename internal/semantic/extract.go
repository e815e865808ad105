// Package semantic extracts weighted, typed components from trip records and
// queries, persists them, and matches query components against trip
// components for structured (non-LIKE) search.
package semantic

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/voyagehq/tripsearch-mcp/internal/storage"
	"github.com/voyagehq/tripsearch-mcp/internal/terms"
	"github.com/voyagehq/tripsearch-mcp/pkg/types"
)

// Component weights by type. Client names identify a record most strongly,
// then destinations, then dates and descriptors.
const (
	weightClient      = 2.0
	weightDestination = 1.5
	weightDescriptor  = 1.3
	weightYear        = 1.2
	weightMonth       = 1.1
	weightGeneric     = 1.0
)

var namePairRe = regexp.MustCompile(`(?i)^\s*([A-Za-z]+)\s+(?:and|&)\s+([A-Za-z]+)`)

// Extract derives the full semantic component set from a source trip record.
// The output fully replaces any prior set for the trip: extraction twice
// from an unchanged record yields the same components.
func Extract(trip *types.Trip, travelers []types.Traveler, schedule []types.ScheduleItem) []storage.Component {
	var out []storage.Component
	add := func(t storage.ComponentType, value string, weight float64, synonyms []string) {
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			return
		}
		out = append(out, storage.Component{
			TripID: trip.ID, Type: t, Value: value, Weight: weight, Synonyms: synonyms,
		})
	}

	// Client identity: names embedded in the primary email's local part and
	// name pairs in the trip title ("Sara and Darren's ...").
	for _, name := range namesFromEmail(trip.PrimaryEmail) {
		add(storage.ComponentClient, name, weightClient, nil)
	}
	if m := namePairRe.FindStringSubmatch(trip.Name); m != nil {
		add(storage.ComponentClient, m[1], weightClient, nil)
		add(storage.ComponentClient, m[2], weightClient, nil)
	}
	for _, tr := range travelers {
		if tr.Role == types.RolePrimary {
			add(storage.ComponentClient, tr.Name, weightClient, nil)
		}
	}

	for _, dest := range SplitDestinations(trip.Destinations) {
		add(storage.ComponentDestination, dest, weightDestination, destinationSynonyms[dest])
	}

	if !trip.StartDate.IsZero() {
		add(storage.ComponentDate, strconv.Itoa(trip.StartDate.Year()), weightYear, nil)
		add(storage.ComponentDate, strings.ToLower(trip.StartDate.Month().String()), weightMonth, nil)
	}

	for _, item := range schedule {
		if item.Kind == types.ScheduleActivity && item.Title != "" {
			add(storage.ComponentActivity, item.Title, weightGeneric, nil)
		}
	}

	bucket := CostBucket(trip.TotalCost)
	add(storage.ComponentCost, bucket, weightGeneric, costSynonyms[bucket])

	add(storage.ComponentStatus, string(trip.Status), weightGeneric, statusSynonyms[string(trip.Status)])

	for _, d := range descriptorsIn(trip.Name + " " + trip.Notes) {
		add(storage.ComponentDescriptor, d, weightDescriptor, nil)
	}

	return out
}

// SplitDestinations breaks a free-text destination field on commas and
// semicolons into lowercased entries.
func SplitDestinations(destinations string) []string {
	fields := strings.FieldsFunc(destinations, func(r rune) bool {
		return r == ',' || r == ';'
	})
	var out []string
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// CostBucket labels a total cost for coarse matching.
func CostBucket(total float64) string {
	switch {
	case total < 1000:
		return "budget"
	case total < 5000:
		return "moderate"
	case total < 10000:
		return "premium"
	default:
		return "luxury"
	}
}

// namesFromEmail pulls name tokens from an email local part:
// "sara.jones@email.com" yields "sara" and "jones".
func namesFromEmail(email string) []string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return nil
	}
	local := email[:at]
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+' || (r >= '0' && r <= '9')
	})
	var out []string
	for _, p := range parts {
		if len(p) >= 2 {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}

// descriptorsIn scans text for known descriptor vocabulary, preserving
// first-seen order without duplicates.
func descriptorsIn(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range strings.Fields(strings.ToLower(terms.Normalize(text))) {
		tok = strings.Trim(tok, ".,!?")
		if terms.Descriptors[tok] && !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}

// QueryComponent is one typed, weighted fact recognized in query text.
type QueryComponent struct {
	Type   storage.ComponentType
	Value  string
	Weight float64
}

// ExtractQuery runs the record-side vocabulary and pattern rules over query
// text so query components can be matched type-to-type against a trip's
// stored components.
func ExtractQuery(query string) []QueryComponent {
	var out []QueryComponent
	seen := make(map[string]bool)
	add := func(t storage.ComponentType, value string, weight float64) {
		key := string(t) + ":" + value
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, QueryComponent{Type: t, Value: value, Weight: weight})
	}

	for _, tok := range strings.Fields(terms.Normalize(query)) {
		lower := strings.ToLower(strings.Trim(tok, ".,!?"))
		if len(lower) < 2 {
			continue
		}
		switch {
		case strings.Contains(lower, "@"):
			for _, name := range namesFromEmail(lower) {
				add(storage.ComponentClient, name, weightClient)
			}
		case terms.Locations[lower]:
			add(storage.ComponentDestination, lower, weightDestination)
		case isYear(lower):
			add(storage.ComponentDate, lower, weightYear)
		case monthNames[lower]:
			add(storage.ComponentDate, lower, weightMonth)
		// Cost and status vocabulary win over the descriptor set: "luxury" and
		// "budget" appear in both.
		case costBucketWords[lower] != "":
			add(storage.ComponentCost, costBucketWords[lower], weightGeneric)
		case statusWords[lower] != "":
			add(storage.ComponentStatus, statusWords[lower], weightGeneric)
		case terms.Descriptors[lower]:
			add(storage.ComponentDescriptor, lower, weightDescriptor)
		case isCapitalizedWord(tok):
			add(storage.ComponentClient, lower, weightClient)
		}
	}
	return out
}

func isYear(tok string) bool {
	if len(tok) != 4 {
		return false
	}
	n, err := strconv.Atoi(tok)
	return err == nil && n >= 1900 && n <= 2199
}

func isCapitalizedWord(tok string) bool {
	if tok == "" || tok[0] < 'A' || tok[0] > 'Z' {
		return false
	}
	for _, r := range tok[1:] {
		if !(r >= 'a' && r <= 'z') {
			return false
		}
	}
	return true
}

// Values returns the raw values of query components, for candidate
// narrowing in the store.
func Values(components []QueryComponent) []string {
	vals := make([]string, 0, len(components))
	for _, c := range components {
		vals = append(vals, c.Value)
	}
	return vals
}

// String implements fmt.Stringer for diagnostics.
func (q QueryComponent) String() string {
	return fmt.Sprintf("%s:%s(%.1f)", q.Type, q.Value, q.Weight)
}
