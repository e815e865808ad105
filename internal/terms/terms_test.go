package terms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"ampersand", "Sara & Darren", "Sara and Darren"},
		{"plus", "flights+hotels", "flights and hotels"},
		{"slash", "beach/mountain", "beach or mountain"},
		{"quotes and colons", `"anniversary": trip`, "anniversary trip"},
		{"collapse whitespace", "  Bath   Bristol  ", "Bath Bristol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestClassifyCapAndOrdering(t *testing.T) {
	c := Classify("Sara anniversary bristol 2025 hiking wine")

	require.LessOrEqual(t, len(c.Terms), MaxTerms)
	for _, term := range c.Terms {
		assert.GreaterOrEqual(t, len(term.Term), 2)
	}
	for i := 1; i < len(c.Terms); i++ {
		assert.GreaterOrEqual(t, c.Terms[i-1].Weight, c.Terms[i].Weight,
			"terms must be sorted by descending weight")
	}

	// Highest-weight survivors: proper noun, then the numeric year.
	assert.Equal(t, "sara", c.Terms[0].Term)
	assert.Equal(t, WeightProperNoun, c.Terms[0].Weight)
	assert.Equal(t, "2025", c.Terms[1].Term)
	assert.Equal(t, WeightNumeric, c.Terms[1].Weight)
}

func TestClassifyWithLimitCapsTerms(t *testing.T) {
	c := ClassifyWithLimit("sara bristol 2025", 1)

	require.Len(t, c.Terms, 1)
	assert.Equal(t, "sara", c.Terms[0].Term)

	// Non-positive caps fall back to the package default.
	c = ClassifyWithLimit("sara bristol 2025", 0)
	assert.Len(t, c.Terms, 3)
}

func TestClassifyStopWordsFilteredAfterCap(t *testing.T) {
	// The stop word sorts into the capped window (all four tokens carry
	// generic weight), so removal happens after truncation and the result
	// holds two terms, not a backfilled three.
	c := Classify("the trips journeys itinerary")

	require.Len(t, c.Terms, 2)
	assert.Equal(t, "trips", c.Terms[0].Term)
	assert.Equal(t, "journeys", c.Terms[1].Term)
}

func TestClassifyNoDuplicates(t *testing.T) {
	c := Classify("bristol Bristol bristol")

	require.Len(t, c.Terms, 1)
	// Duplicate resolution keeps the higher weight: "Bristol" is a proper noun.
	assert.Equal(t, "bristol", c.Terms[0].Term)
	assert.Equal(t, WeightProperNoun, c.Terms[0].Weight)
}

func TestClassifyEmail(t *testing.T) {
	c := Classify("sara.jones@email.com bristol")

	require.NotEmpty(t, c.Terms)
	assert.Equal(t, "sara.jones@email.com", c.Terms[0].Term)
	assert.Equal(t, WeightEmail, c.Terms[0].Weight)
	assert.Equal(t, CategoryEmail, c.Terms[0].Category)
	assert.Equal(t, KindExactEmail, c.Kind)
}

func TestClassifyNumericIdentifier(t *testing.T) {
	c := Classify("42")

	assert.Equal(t, KindExactID, c.Kind)
	require.Len(t, c.Terms, 1)
	assert.Equal(t, CategoryNumeric, c.Terms[0].Category)
}

func TestClassifyLocationAndDescriptor(t *testing.T) {
	c := Classify("hawaii honeymoon")

	require.Len(t, c.Terms, 2)
	assert.Equal(t, "hawaii", c.Terms[0].Term)
	assert.Equal(t, CategoryLocation, c.Terms[0].Category)
	assert.Equal(t, WeightLocation, c.Terms[0].Weight)
	assert.Equal(t, "honeymoon", c.Terms[1].Term)
	assert.Equal(t, CategoryDescriptor, c.Terms[1].Category)
}

func TestClassifyStopWordFallback(t *testing.T) {
	// A query of nothing but stop words should not classify to empty.
	c := Classify("the and with")
	assert.NotEmpty(t, c.Terms)
	assert.LessOrEqual(t, len(c.Terms), 2)
}

func TestClassifyDiscardsShortTokens(t *testing.T) {
	c := Classify("a b bristol")
	require.Len(t, c.Terms, 1)
	assert.Equal(t, "bristol", c.Terms[0].Term)
}

func TestPrimaryTerm(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{"skips imperatives", "show me all Hawaii trips", "hawaii"},
		{"single token", "bristol", "bristol"},
		{"prefers higher weight", "find trips sara.jones@email.com", "sara.jones@email.com"},
		{"all imperatives falls back", "show all", "show"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PrimaryTerm(tt.query))
		})
	}
}
