package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusqa/forumsearch/internal/forum"
)

func TestParse(t *testing.T) {
	pred, f := Parse("broken printers", forum.Filters{Category: 3})
	require.NotNil(t, pred)
	assert.Equal(t, []string{"broken", "printer"}, pred.Stems)
	assert.Equal(t, int64(3), f.Category)
	assert.Zero(t, f.Author)
}

func TestParseUserConstraint(t *testing.T) {
	pred, f := Parse("user:42 database", forum.Filters{})
	require.NotNil(t, pred)
	assert.Equal(t, []string{"databas"}, pred.Stems)
	assert.Equal(t, int64(42), f.Author)
}

func TestParseUserConstraintOverridesAuthorFilter(t *testing.T) {
	_, f := Parse("user:7 anything", forum.Filters{Author: 99})
	assert.Equal(t, int64(7), f.Author)
}

func TestParseFirstUserConstraintWins(t *testing.T) {
	pred, f := Parse("user:5 exams user:8", forum.Filters{})
	assert.Equal(t, int64(5), f.Author)
	require.NotNil(t, pred)
	assert.Equal(t, []string{"exam"}, pred.Stems)
}

func TestParseUserConstraintWithoutDigitsIsText(t *testing.T) {
	pred, f := Parse("user: account locked", forum.Filters{})
	assert.Zero(t, f.Author)
	require.NotNil(t, pred)
	assert.Equal(t, []string{"user", "account", "lock"}, pred.Stems)
}

func TestParseNilPredicateOnEmptyText(t *testing.T) {
	cases := []string{"", "   ", "the and of", "user:12", "!!! 404"}
	for _, raw := range cases {
		pred, _ := Parse(raw, forum.Filters{})
		assert.Nil(t, pred, "query %q", raw)
	}
}

func TestParseCoercesNegativeFilters(t *testing.T) {
	_, f := Parse("wifi", forum.Filters{Category: -1, Author: -20})
	assert.Zero(t, f.Category)
	assert.Zero(t, f.Author)
}

func TestParseWhitespaceIndependence(t *testing.T) {
	a, _ := Parse("dorm   wifi", forum.Filters{})
	b, _ := Parse("  dorm wifi  ", forum.Filters{})
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, a.Stems, b.Stems)
}
