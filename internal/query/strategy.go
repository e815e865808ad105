package query

import (
	"github.com/voyagehq/tripsearch-mcp/internal/terms"
)

// StrategyKind names a clause-building approach, ordered from most to least
// selective.
type StrategyKind string

const (
	StrategyComprehensive StrategyKind = "comprehensive" // AND of per-term column disjunctions
	StrategyWeighted      StrategyKind = "weighted"      // Column fan-out tiered by term weight
	StrategySimplified    StrategyKind = "simplified"    // OR of terms against the primary column
)

// Strategy is one candidate WHERE clause with its bound parameters.
type Strategy struct {
	Kind StrategyKind
	SQL  string
	Args []interface{}
}

// comprehensiveTermMax bounds when the comprehensive strategy applies.
// Past two terms the full column cross-product gets rejected as too complex.
const comprehensiveTermMax = 2

// BuildStrategies returns candidate strategies ordered from most to least
// selective for the given classified terms and target columns. columns[0]
// is the primary column.
func BuildStrategies(classified []terms.ClassifiedTerm, columns []string) []Strategy {
	if len(classified) == 0 || len(columns) == 0 {
		return nil
	}

	var out []Strategy
	if len(classified) <= comprehensiveTermMax {
		out = append(out, buildComprehensive(classified, columns))
	} else {
		out = append(out, buildWeighted(classified, columns))
	}
	out = append(out, buildSimplified(classified, columns[0]))
	return out
}

// buildComprehensive ANDs across terms and ORs across all columns per term.
func buildComprehensive(classified []terms.ClassifiedTerm, columns []string) Strategy {
	var conj And
	for _, ct := range classified {
		conj = append(conj, columnDisjunction(ct.Term, columns))
	}
	sql, args := Render(conj)
	return Strategy{Kind: StrategyComprehensive, SQL: sql, Args: args}
}

// buildWeighted tiers column fan-out by term weight: strong terms search
// every column, medium terms the first two, weak terms only the primary.
// Total clause count stays bounded regardless of input size.
func buildWeighted(classified []terms.ClassifiedTerm, columns []string) Strategy {
	var conj And
	for _, ct := range classified {
		switch {
		case ct.Weight >= 2.0:
			conj = append(conj, columnDisjunction(ct.Term, columns))
		case ct.Weight >= 1.5:
			n := len(columns)
			if n > 2 {
				n = 2
			}
			conj = append(conj, columnDisjunction(ct.Term, columns[:n]))
		default:
			conj = append(conj, Like{Column: columns[0], Value: ct.Term})
		}
	}
	sql, args := Render(conj)
	return Strategy{Kind: StrategyWeighted, SQL: sql, Args: args}
}

// buildSimplified ORs every term against the primary column only.
func buildSimplified(classified []terms.ClassifiedTerm, primary string) Strategy {
	var disj Or
	for _, ct := range classified {
		disj = append(disj, Like{Column: primary, Value: ct.Term})
	}
	sql, args := Render(disj)
	return Strategy{Kind: StrategySimplified, SQL: sql, Args: args}
}

func columnDisjunction(term string, columns []string) Pred {
	var disj Or
	for _, col := range columns {
		disj = append(disj, Like{Column: col, Value: term})
	}
	return disj
}
