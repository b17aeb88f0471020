package domain

import (
	"slices"
	"strings"
)

// Query is a parsed filter expression.
//
// Terms are separated by whitespace and all must hold. A leading "-" negates
// a term. Supported operators:
//
//	tag:project    node carries the tag (with or without '#')
//	path:notes/    node path contains the text
//	file:alpha     node name contains the text
//	class:pinned   node carries the class
//	alpha          bare word, fuzzy matched against the node name
type Query struct {
	Raw   string
	terms []queryTerm
}

type queryTerm struct {
	op     string
	value  string
	negate bool
}

// ParseQuery parses a filter expression. An empty expression matches everything.
func ParseQuery(raw string) Query {
	q := Query{Raw: raw}
	for _, field := range strings.Fields(raw) {
		t := queryTerm{}
		if strings.HasPrefix(field, "-") && len(field) > 1 {
			t.negate = true
			field = field[1:]
		}
		if op, value, ok := strings.Cut(field, ":"); ok && isQueryOp(op) && value != "" {
			t.op = op
			t.value = strings.ToLower(value)
		} else {
			t.value = strings.ToLower(field)
		}
		q.terms = append(q.terms, t)
	}
	return q
}

func isQueryOp(op string) bool {
	switch op {
	case "tag", "path", "file", "class":
		return true
	}
	return false
}

// IsEmpty reports whether the query has no terms
func (q Query) IsEmpty() bool {
	return len(q.terms) == 0
}

// Match reports whether a node satisfies every term
func (q Query) Match(n NodeState) bool {
	for _, t := range q.terms {
		if t.match(n) == t.negate {
			return false
		}
	}
	return true
}

func (t queryTerm) match(n NodeState) bool {
	switch t.op {
	case "tag":
		want := strings.TrimPrefix(t.value, "#")
		return slices.ContainsFunc(n.Tags, func(tag string) bool {
			return strings.ToLower(strings.TrimPrefix(tag, "#")) == want
		})
	case "path":
		return strings.Contains(strings.ToLower(n.Path), t.value)
	case "file":
		return strings.Contains(strings.ToLower(n.Name), t.value)
	case "class":
		return slices.Contains(n.Classes, t.value)
	default:
		return FuzzyScore(n.Name, t.value) > 0
	}
}

// FuzzyScore calculates a relevance score for how well target matches query.
// Zero means no match.
func FuzzyScore(target, query string) int {
	target = strings.ToLower(target)
	query = strings.ToLower(query)

	if len(query) == 0 {
		return 0
	}

	if strings.Contains(target, query) {
		score := 100
		if strings.HasPrefix(target, query) {
			score += 50
		}
		return score
	}

	// chars must appear in order
	score := 0
	queryIdx := 0
	prevMatchIdx := -1

	for i := 0; i < len(target) && queryIdx < len(query); i++ {
		if target[i] == query[queryIdx] {
			if prevMatchIdx == i-1 {
				score += 10 // consecutive chars
			}
			if i == 0 {
				score += 15 // start of string
			}
			if i > 0 && (target[i-1] == ' ' || target[i-1] == '.' || target[i-1] == '-') {
				score += 10 // after separator
			}
			score += 1
			prevMatchIdx = i
			queryIdx++
		}
	}

	if queryIdx == len(query) {
		return score
	}
	return 0
}

// StyleGroup adds Class to every node matching Filter
type StyleGroup struct {
	Filter string `mapstructure:"filter" json:"filter"`
	Class  string `mapstructure:"class" json:"class"`
}

// CompiledStyleGroup is a StyleGroup with its filter parsed
type CompiledStyleGroup struct {
	Query Query
	Class string
}

// CompileStyleGroups parses every group's filter, keeping their order.
// Groups without a class are dropped.
func CompileStyleGroups(groups []StyleGroup) []CompiledStyleGroup {
	compiled := make([]CompiledStyleGroup, 0, len(groups))
	for _, g := range groups {
		if strings.TrimSpace(g.Class) == "" {
			continue
		}
		compiled = append(compiled, CompiledStyleGroup{
			Query: ParseQuery(g.Filter),
			Class: ClassToken(g.Class),
		})
	}
	return compiled
}
