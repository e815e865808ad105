package searcher

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/voyagehq/tripsearch-mcp/internal/config"
	"github.com/voyagehq/tripsearch-mcp/internal/facts"
	"github.com/voyagehq/tripsearch-mcp/internal/storage"
	"github.com/voyagehq/tripsearch-mcp/internal/terms"
	"github.com/voyagehq/tripsearch-mcp/pkg/types"
)

// Scorer ranks search-surface rows against a query. Signal weights come
// from configuration; the defaults mirror the observed production constants.
type Scorer struct {
	weights config.Scoring
}

// NewScorer creates a Scorer with the given signal weights.
func NewScorer(weights config.Scoring) *Scorer {
	return &Scorer{weights: weights}
}

// Rank scores every candidate and returns the top matches, bounded by
// limit. Ties break on score, then most recent last_synced, then trip id,
// so rankings are deterministic.
func (sc *Scorer) Rank(query string, candidates []*storage.SurfaceRow, limit int) []types.RankedMatch {
	tokens := queryTokens(query)
	exactID := exactTripID(query)

	matches := make([]types.RankedMatch, 0, len(candidates))
	for _, row := range candidates {
		m := sc.score(query, tokens, exactID, row)
		if m.Score > 0 {
			matches = append(matches, m)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if !matches[i].LastSynced.Equal(matches[j].LastSynced) {
			return matches[i].LastSynced.After(matches[j].LastSynced)
		}
		return matches[i].TripID < matches[j].TripID
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// score computes the additive match score for one surface row. Exact
// identifier signals dominate token overlap by an order of magnitude.
func (sc *Scorer) score(query string, tokens []string, exactID int64, row *storage.SurfaceRow) types.RankedMatch {
	w := sc.weights
	total := 0.0
	var matched, reasons []string
	hit := func(points float64, token, reason string) {
		total += points
		if token != "" {
			matched = append(matched, token)
		}
		reasons = append(reasons, reason)
	}

	normalizedQuery := strings.ToLower(strings.TrimSpace(terms.Normalize(query)))
	if row.Slug != "" && (normalizedQuery == row.Slug || storage.Slugify(query) == row.Slug) {
		hit(w.SlugExact, row.Slug, "slug exact match")
	}
	if exactID != 0 && exactID == row.TripID {
		hit(w.TripIDExact, strconv.FormatInt(exactID, 10), "trip id exact match")
	}

	primaryEmail := strings.ToLower(row.PrimaryEmail)
	emailsNorm := row.EmailsNormalized

	tokenSet := fieldSet(row.SearchTokens)
	phoneticSet := fieldSet(row.PhoneticTokens)

	for _, tok := range tokens {
		switch {
		case primaryEmail != "" && tok == primaryEmail:
			hit(w.PrimaryEmailExact, tok, "primary client email exact match")
		case strings.Contains(tok, "@") && emailsNorm != "" && strings.Contains(emailsNorm, tok):
			hit(w.TravelerEmailSub, tok, "traveler email match")
		case tokenSet[tok]:
			hit(w.SearchToken, tok, "search token match")
		case phoneticSet[facts.Phonetic(tok)]:
			hit(w.PhoneticToken, tok, "phonetic match")
		case strings.Contains(row.NameNormalized, tok):
			hit(w.NameNormalized, tok, "trip name match")
		case strings.Contains(strings.ToLower(row.Destinations), tok) || strings.Contains(row.DestNormalized, tok):
			hit(w.Destination, tok, "destination match")
		case strings.Contains(strings.ToLower(row.TravelerNames), tok) || strings.Contains(row.NamesNormalized, tok):
			hit(w.TravelerName, tok, "traveler name match")
		case strings.Contains(emailsNorm, tok):
			hit(w.EmailNormalized, tok, "email match")
		case strings.Contains(strings.ToLower(row.PrimaryClientName), tok):
			hit(w.PrimaryClientName, tok, "primary client name match")
		case strings.Contains(strings.ToLower(row.TripName), tok):
			hit(w.NameRawPartial, tok, "partial name match")
		}
	}

	if total > 0 {
		if row.Status == string(types.StatusConfirmed) {
			hit(w.ConfirmedBonus, "", "confirmed trip")
		}
		bonus := row.TravelerCount
		if bonus > w.TravelerCountCap {
			bonus = w.TravelerCountCap
		}
		if bonus > 0 {
			hit(float64(bonus), "", fmt.Sprintf("%d travelers", row.TravelerCount))
		}
	}

	return types.RankedMatch{
		TripID:        row.TripID,
		TripName:      row.TripName,
		Slug:          row.Slug,
		Status:        types.TripStatus(row.Status),
		Destinations:  row.Destinations,
		Score:         total,
		MatchedTokens: matched,
		Reasons:       reasons,
		LastSynced:    row.LastSynced,
	}
}

// queryTokens yields the scoreable tokens of a query: normalized,
// lowercased, imperatives dropped.
func queryTokens(query string) []string {
	var out []string
	for _, tok := range strings.Fields(strings.ToLower(terms.Normalize(query))) {
		if len(tok) < 2 || terms.ImperativeWords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// exactTripID recognizes bare-number and "trip-42" style queries.
func exactTripID(query string) int64 {
	q := strings.ToLower(strings.TrimSpace(query))
	q = strings.TrimPrefix(q, "trip-")
	q = strings.TrimPrefix(q, "trip ")
	id, err := strconv.ParseInt(q, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func fieldSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.Fields(s) {
		set[f] = true
	}
	return set
}
