// Package query builds parameterized WHERE clauses from classified search
// terms. Clauses are assembled as a typed predicate tree and rendered with
// bound parameters, never by concatenating user input into SQL.
package query

import "strings"

// Pred is a node in a predicate tree.
type Pred interface {
	// Render appends the node's SQL to sb and its bound values to args,
	// returning the updated args slice.
	Render(sb *strings.Builder, args []interface{}) []interface{}
}

// Like matches a column against a substring pattern.
type Like struct {
	Column string
	Value  string // Raw value; wildcards are added at render time
}

func (l Like) Render(sb *strings.Builder, args []interface{}) []interface{} {
	sb.WriteString(l.Column)
	sb.WriteString(" LIKE ?")
	return append(args, "%"+l.Value+"%")
}

// Eq matches a column for equality.
type Eq struct {
	Column string
	Value  interface{}
}

func (e Eq) Render(sb *strings.Builder, args []interface{}) []interface{} {
	sb.WriteString(e.Column)
	sb.WriteString(" = ?")
	return append(args, e.Value)
}

// And is a conjunction of child predicates.
type And []Pred

func (a And) Render(sb *strings.Builder, args []interface{}) []interface{} {
	return renderJoined(sb, args, []Pred(a), " AND ")
}

// Or is a disjunction of child predicates.
type Or []Pred

func (o Or) Render(sb *strings.Builder, args []interface{}) []interface{} {
	return renderJoined(sb, args, []Pred(o), " OR ")
}

func renderJoined(sb *strings.Builder, args []interface{}, preds []Pred, sep string) []interface{} {
	if len(preds) == 1 {
		return preds[0].Render(sb, args)
	}
	sb.WriteString("(")
	for i, p := range preds {
		if i > 0 {
			sb.WriteString(sep)
		}
		args = p.Render(sb, args)
	}
	sb.WriteString(")")
	return args
}

// Render produces the SQL fragment and bound parameters for a predicate tree.
func Render(p Pred) (string, []interface{}) {
	var sb strings.Builder
	args := p.Render(&sb, nil)
	return sb.String(), args
}

// ClauseCount reports how many leaf comparisons a predicate tree contains.
// Engines reject patterns past a complexity threshold, so strategies keep
// this bounded.
func ClauseCount(p Pred) int {
	switch v := p.(type) {
	case And:
		n := 0
		for _, c := range v {
			n += ClauseCount(c)
		}
		return n
	case Or:
		n := 0
		for _, c := range v {
			n += ClauseCount(c)
		}
		return n
	default:
		return 1
	}
}
