package facts

import (
	"sort"
	"strings"
	"time"

	"github.com/voyagehq/tripsearch-mcp/internal/storage"
	"github.com/voyagehq/tripsearch-mcp/internal/terms"
	"github.com/voyagehq/tripsearch-mcp/pkg/types"
)

// BuildSurface computes the denormalized search projection for one trip.
// Pure function of its inputs apart from the sync timestamp, so rebuilding
// an unchanged trip yields an identical row.
func BuildSurface(trip *types.Trip, travelers []types.Traveler, now time.Time) *storage.SurfaceRow {
	var names, emails []string
	primaryName, primaryEmail := "", trip.PrimaryEmail
	for _, tr := range travelers {
		if tr.Name != "" {
			names = append(names, tr.Name)
		}
		if tr.Email != "" {
			emails = append(emails, tr.Email)
		}
		if tr.Role == types.RolePrimary {
			primaryName = tr.Name
			if tr.Email != "" {
				primaryEmail = tr.Email
			}
		}
	}

	namesJoined := strings.Join(names, ", ")
	emailsJoined := strings.Join(emails, ", ")

	// The slug rides along as a single token so slug queries hit the
	// surface's SQL path, not just the scorer.
	tokens := collectTokens(trip.Name, trip.Slug, trip.Destinations, namesJoined, emailsJoined)

	return &storage.SurfaceRow{
		TripID:            trip.ID,
		TripName:          trip.Name,
		NameNormalized:    normalizeText(trip.Name),
		Slug:              trip.Slug,
		Destinations:      trip.Destinations,
		DestNormalized:    normalizeText(trip.Destinations),
		TravelerNames:     namesJoined,
		NamesNormalized:   normalizeText(namesJoined),
		TravelerEmails:    emailsJoined,
		EmailsNormalized:  strings.ToLower(emailsJoined),
		PrimaryClientName: primaryName,
		PrimaryEmail:      primaryEmail,
		Status:            string(trip.Status),
		TravelerCount:     len(travelers),
		PhoneticTokens:    phoneticTokens(tokens),
		SearchTokens:      strings.Join(tokens, " "),
		LastSynced:        now,
	}
}

// normalizeText lowercases and rewrites punctuation the same way query
// classification does, so surface columns and query terms compare equal.
func normalizeText(text string) string {
	return strings.ToLower(terms.Normalize(text))
}

// collectTokens gathers the unique searchable tokens across the trip's text
// fields, email local parts included, sorted for stable output.
func collectTokens(fields ...string) []string {
	seen := make(map[string]bool)
	for _, field := range fields {
		for _, tok := range strings.FieldsFunc(normalizeText(field), func(r rune) bool {
			return r == ' ' || r == ',' || r == ';' || r == '@' || r == '.'
		}) {
			if len(tok) >= 2 {
				seen[tok] = true
			}
		}
	}
	tokens := make([]string, 0, len(seen))
	for tok := range seen {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// phoneticTokens encodes each token, dropping empties and duplicates.
func phoneticTokens(tokens []string) string {
	seen := make(map[string]bool)
	var codes []string
	for _, tok := range tokens {
		code := Phonetic(tok)
		if code != "" && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return strings.Join(codes, " ")
}
