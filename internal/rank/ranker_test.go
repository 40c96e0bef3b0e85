package rank

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusqa/forumsearch/internal/forum"
	"github.com/campusqa/forumsearch/internal/index"
	"github.com/campusqa/forumsearch/internal/query"
)

// seedCampusPosts indexes a small forum: three posts about printers in two
// categories by two authors, plus one unrelated post.
func seedCampusPosts(t *testing.T) *index.MemoryStore {
	t.Helper()
	store := index.NewMemoryStore()
	w := index.NewWriter(store)
	ctx := context.Background()

	store.AddCategory(forum.Category{ID: 1, Name: "IT Help"})
	store.AddCategory(forum.Category{ID: 2, Name: "Campus Life"})

	store.AddPost(forum.Post{ID: 1, Type: forum.PostQuestion, Title: "Printer out of toner", CategoryID: 1, AuthorID: 10, AnswerCount: 2, CreatedAt: time.Now().Add(-3 * time.Hour)})
	store.AddPost(forum.Post{ID: 2, Type: forum.PostQuestion, Title: "Library printer queue stuck", CategoryID: 1, AuthorID: 11, AnswerCount: 0, CreatedAt: time.Now().Add(-2 * time.Hour)})
	store.AddPost(forum.Post{ID: 3, Type: forum.PostQuestion, Title: "Printers in the dorm?", CategoryID: 2, AuthorID: 10, AnswerCount: 1, CreatedAt: time.Now().Add(-1 * time.Hour)})
	store.AddPost(forum.Post{ID: 4, Type: forum.PostQuestion, Title: "Best coffee on campus", CategoryID: 2, AuthorID: 11, AnswerCount: 5, CreatedAt: time.Now()})

	require.NoError(t, w.Index(ctx, 1, "Printer out of toner", "the printer printer needs toner"))
	require.NoError(t, w.Index(ctx, 2, "Library printer queue stuck", "jobs sit in the queue"))
	require.NoError(t, w.Index(ctx, 3, "Printers in the dorm?", "dorm dorm dorm printers anywhere"))
	require.NoError(t, w.Index(ctx, 4, "Best coffee on campus", "coffee near the library"))
	return store
}

func rankedSearch(t *testing.T, r *Ranker, raw string, f forum.Filters, page int) *forum.ResultPage {
	t.Helper()
	pred, f := query.Parse(raw, f)
	result, err := r.Search(context.Background(), pred, f, page)
	require.NoError(t, err)
	return result
}

func resultIDs(page *forum.ResultPage) []int64 {
	ids := make([]int64, 0, len(page.Results))
	for _, p := range page.Results {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestSearchRanksBySummedWeight(t *testing.T) {
	r := New(seedCampusPosts(t), 10, 300)

	result := rankedSearch(t, r, "printer", forum.Filters{}, 1)
	assert.Equal(t, 3, result.TotalMatches)
	assert.Equal(t, 3, result.OnThisPage)
	// Post 1 mentions "printer" most often; posts 2 and 3 tie on weight and
	// fall back to most recent first.
	assert.Equal(t, []int64{1, 3, 2}, resultIDs(result))
	assert.Greater(t, result.Results[0].Score, result.Results[1].Score)
}

func TestSearchPrefixMatchesIndexedStems(t *testing.T) {
	r := New(seedCampusPosts(t), 10, 300)

	result := rankedSearch(t, r, "print", forum.Filters{}, 1)
	assert.Equal(t, 3, result.TotalMatches)
}

func TestSearchJoinsCategoryName(t *testing.T) {
	r := New(seedCampusPosts(t), 10, 300)

	result := rankedSearch(t, r, "toner", forum.Filters{}, 1)
	require.Equal(t, 1, result.OnThisPage)
	assert.Equal(t, "IT Help", result.Results[0].CategoryName)
}

func TestSearchCategoryFilter(t *testing.T) {
	r := New(seedCampusPosts(t), 10, 300)

	result := rankedSearch(t, r, "printer", forum.Filters{Category: 2}, 1)
	assert.Equal(t, []int64{3}, resultIDs(result))
}

func TestSearchAnsweredFilter(t *testing.T) {
	r := New(seedCampusPosts(t), 10, 300)

	answered := rankedSearch(t, r, "printer", forum.Filters{Answered: forum.AnsweredOnly}, 1)
	assert.Equal(t, []int64{1, 3}, resultIDs(answered))

	unanswered := rankedSearch(t, r, "printer", forum.Filters{Answered: forum.UnansweredOnly}, 1)
	assert.Equal(t, []int64{2}, resultIDs(unanswered))
}

func TestSearchAuthorFilter(t *testing.T) {
	r := New(seedCampusPosts(t), 10, 300)

	result := rankedSearch(t, r, "printer user:11", forum.Filters{}, 1)
	assert.Equal(t, []int64{2}, resultIDs(result))
}

func TestSearchFiltersOnlyOrdersByRecency(t *testing.T) {
	r := New(seedCampusPosts(t), 10, 300)

	result := rankedSearch(t, r, "", forum.Filters{Category: 2}, 1)
	assert.Equal(t, []int64{4, 3}, resultIDs(result))
	for _, p := range result.Results {
		assert.Zero(t, p.Score)
	}
}

func TestSearchNoMatches(t *testing.T) {
	r := New(seedCampusPosts(t), 10, 300)

	result := rankedSearch(t, r, "parking permits", forum.Filters{}, 1)
	assert.Zero(t, result.TotalMatches)
	assert.Empty(t, result.Results)
	assert.Equal(t, 1, result.Page)
	assert.Zero(t, result.NextPage)
	assert.Zero(t, result.PrevPage)
}

func TestSearchPagination(t *testing.T) {
	store := index.NewMemoryStore()
	w := index.NewWriter(store)
	for i := int64(1); i <= 25; i++ {
		store.AddPost(forum.Post{ID: i, Type: forum.PostQuestion, CreatedAt: time.Now()})
		require.NoError(t, w.Index(context.Background(), i, fmt.Sprintf("exam question %d", i), "when is the exam"))
	}
	r := New(store, 10, 300)

	page1 := rankedSearch(t, r, "exam", forum.Filters{}, 1)
	assert.Equal(t, 25, page1.TotalMatches)
	assert.Equal(t, 10, page1.OnThisPage)
	assert.Equal(t, 2, page1.NextPage)
	assert.Zero(t, page1.PrevPage)

	page3 := rankedSearch(t, r, "exam", forum.Filters{}, 3)
	assert.Equal(t, 5, page3.OnThisPage)
	assert.Zero(t, page3.NextPage)
	assert.Equal(t, 2, page3.PrevPage)

	page9 := rankedSearch(t, r, "exam", forum.Filters{}, 9)
	assert.Zero(t, page9.OnThisPage)
	assert.Empty(t, page9.Results)
	assert.Equal(t, 8, page9.PrevPage)
	assert.Zero(t, page9.NextPage)
}

func TestSearchResultCap(t *testing.T) {
	store := index.NewMemoryStore()
	w := index.NewWriter(store)
	for i := int64(1); i <= 30; i++ {
		store.AddPost(forum.Post{ID: i, Type: forum.PostQuestion, CreatedAt: time.Now()})
		require.NoError(t, w.Index(context.Background(), i, "wifi down again", ""))
	}
	r := New(store, 10, 15)

	page1 := rankedSearch(t, r, "wifi", forum.Filters{}, 1)
	assert.Equal(t, 15, page1.TotalMatches)
	assert.Equal(t, 2, page1.NextPage)

	// The cap truncates the last reachable page.
	page2 := rankedSearch(t, r, "wifi", forum.Filters{}, 2)
	assert.Equal(t, 5, page2.OnThisPage)
	assert.Zero(t, page2.NextPage)

	page3 := rankedSearch(t, r, "wifi", forum.Filters{}, 3)
	assert.Zero(t, page3.OnThisPage)
}
