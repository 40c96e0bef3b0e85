// Package query turns a raw search request into a normalized predicate. It
// extracts the inline user constraint, normalizes the remaining text into
// stems, and coerces structural filters to their nearest valid values.
package query

import (
	"strconv"
	"strings"

	"github.com/campusqa/forumsearch/internal/forum"
	"github.com/campusqa/forumsearch/internal/textnorm"
)

// Predicate is the text half of a search: the stems to match against the
// index. Stems are matched by prefix at execution time, so "quest" finds
// posts indexed under "question".
type Predicate struct {
	Stems []string
}

const userConstraintPrefix = "user:"

// Parse builds the search predicate for a raw query and normalizes the
// structural filters. An inline "user:<integer>" constraint anywhere in the
// query is stripped from the text and overrides the author filter (first
// occurrence wins). A query that normalizes to zero stems yields a nil
// Predicate, meaning the search runs on filters alone.
func Parse(raw string, f forum.Filters) (*Predicate, forum.Filters) {
	if f.Category < 0 {
		f.Category = 0
	}
	if f.Author < 0 {
		f.Author = 0
	}

	text, author := extractUserConstraint(raw)
	if author > 0 {
		f.Author = author
	}

	stems := textnorm.Normalize(text)
	if len(stems) == 0 {
		return nil, f
	}
	return &Predicate{Stems: stems}, f
}

// extractUserConstraint strips every "user:<digits>" occurrence from the
// query and returns the author id of the first one, or zero if none appears.
func extractUserConstraint(raw string) (string, int64) {
	var author int64
	var b strings.Builder
	rest := raw
	for {
		i := strings.Index(rest, userConstraintPrefix)
		if i < 0 {
			b.WriteString(rest)
			break
		}
		j := i + len(userConstraintPrefix)
		k := j
		for k < len(rest) && rest[k] >= '0' && rest[k] <= '9' {
			k++
		}
		if k == j {
			// "user:" with no digits is ordinary text; the colon is
			// stripped by normalization anyway.
			b.WriteString(rest[:j])
			rest = rest[j:]
			continue
		}
		b.WriteString(rest[:i])
		if author == 0 {
			if uid, err := strconv.ParseInt(rest[j:k], 10, 64); err == nil {
				author = uid
			}
		}
		rest = rest[k:]
	}
	return b.String(), author
}
