package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusqa/forumsearch/internal/forum"
	"github.com/campusqa/forumsearch/internal/index"
	"github.com/campusqa/forumsearch/internal/search"
	"github.com/campusqa/forumsearch/pkg/config"
)

func newTestHandler(t *testing.T) (*Handler, *index.MemoryStore) {
	t.Helper()
	store := index.NewMemoryStore()
	svc, err := search.New(store,
		config.SearchConfig{ResultsPerPage: 10, MaxNumResults: 300, QueryTimeout: 2 * time.Second},
		config.IndexerConfig{Workers: 2, TaskTimeout: 2 * time.Second},
	)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return New(svc, svc), store
}

func seedIndexed(t *testing.T, store *index.MemoryStore, id int64, categoryID int64, title, body string) {
	t.Helper()
	store.AddPost(forum.Post{ID: id, Type: forum.PostQuestion, Title: title, CategoryID: categoryID, CreatedAt: time.Now()})
	w := index.NewWriter(store)
	require.NoError(t, w.Index(context.Background(), id, title, body))
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) forum.ResultPage {
	t.Helper()
	var page forum.ResultPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	return page
}

func TestSearchEndpoint(t *testing.T) {
	h, store := newTestHandler(t)
	seedIndexed(t, store, 1, 2, "Gym opening hours", "what time does the gym open")

	rec := postJSON(t, h.Search, `{"query":"gym hours","category":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	page := decodePage(t, rec)
	assert.Equal(t, 1, page.TotalMatches)
	require.Len(t, page.Results, 1)
	assert.Equal(t, int64(1), page.Results[0].ID)
}

func TestSearchEndpointCoercesLooseTypes(t *testing.T) {
	h, store := newTestHandler(t)
	seedIndexed(t, store, 1, 0, "Parking permit renewal", "renew your permit online")

	// String page, string category, float author: all tolerated.
	rec := postJSON(t, h.Search, `{"query":"parking","page":"abc","category":"","author":3.7}`)
	require.Equal(t, http.StatusOK, rec.Code)

	page := decodePage(t, rec)
	assert.Equal(t, 1, page.Page)
}

func TestSearchEndpointMalformedBodyIsEmptySearch(t *testing.T) {
	h, store := newTestHandler(t)
	seedIndexed(t, store, 1, 0, "Anything", "recent post body")

	rec := postJSON(t, h.Search, `{"query": not json`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Falls through to the filters-only recent listing.
	page := decodePage(t, rec)
	assert.Equal(t, 1, page.TotalMatches)
}

func TestSearchGetEndpoint(t *testing.T) {
	h, store := newTestHandler(t)
	seedIndexed(t, store, 1, 4, "Lost keys", "found keys near the quad")
	seedIndexed(t, store, 2, 5, "Bike stolen", "bike rack incident")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=&category=5&page=1", nil)
	rec := httptest.NewRecorder()
	h.SearchGet(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	page := decodePage(t, rec)
	require.Len(t, page.Results, 1)
	assert.Equal(t, int64(2), page.Results[0].ID)
}

func TestIndexEndpoint(t *testing.T) {
	h, store := newTestHandler(t)
	store.AddPost(forum.Post{ID: 12, Type: forum.PostQuestion, CreatedAt: time.Now()})

	rec := postJSON(t, h.Index, `{"post_id":12,"title":"Cafeteria menu","body":"is the menu posted anywhere"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		_, ok := store.Postings("cafeteria", 12)
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestIndexEndpointRejectsBadInput(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := postJSON(t, h.Index, `not json at all`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, h.Index, `{"title":"no id"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, h.Index, `{"post_id":-4,"title":"negative"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCoerceInt(t *testing.T) {
	assert.Equal(t, int64(0), coerceInt(nil))
	assert.Equal(t, int64(5), coerceInt(float64(5)))
	assert.Equal(t, int64(7), coerceInt("7"))
	assert.Equal(t, int64(9), coerceInt(" 9 "))
	assert.Equal(t, int64(0), coerceInt("seven"))
	assert.Equal(t, int64(0), coerceInt([]any{1}))
	assert.Equal(t, int64(2), coerceInt(json.Number("2")))
}

func TestCoercePageAndID(t *testing.T) {
	assert.Equal(t, 1, coercePage("0"))
	assert.Equal(t, 1, coercePage(-3))
	assert.Equal(t, 4, coercePage("4"))
	assert.Equal(t, int64(0), coerceID(-8))
	assert.Equal(t, int64(8), coerceID(float64(8)))
}
