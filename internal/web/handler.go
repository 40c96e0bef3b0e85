// Package web is the thin JSON boundary over the search core. It parses
// request bodies and query strings into filters and page numbers, coercing
// malformed values to their defaults instead of rejecting them, and renders
// result pages. HTML rendering, sessions, and the rest of the forum's routes
// live elsewhere.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/campusqa/forumsearch/internal/forum"
	"github.com/campusqa/forumsearch/internal/search"
	apperrors "github.com/campusqa/forumsearch/pkg/errors"
	"github.com/campusqa/forumsearch/pkg/logger"
)

// Indexer accepts fire-and-forget index submissions. Both the in-process
// search service and the Kafka ingest publisher implement it.
type Indexer interface {
	IndexPost(postID int64, title, body string)
}

// Handler serves the search and index endpoints.
type Handler struct {
	service *search.Service
	indexer Indexer
	logger  *slog.Logger
}

// New creates a Handler. indexer may equal the service itself or a Kafka
// publisher, depending on deployment.
func New(service *search.Service, indexer Indexer) *Handler {
	return &Handler{
		service: service,
		indexer: indexer,
		logger:  slog.Default().With("component", "web-handler"),
	}
}

// searchRequest is the POST /search body. Category, author, and page accept
// any JSON type; non-numeric values degrade to "no constraint" / page 1.
type searchRequest struct {
	Query          string `json:"query"`
	Category       any    `json:"category"`
	AnsweredStatus string `json:"answeredStatus"`
	Author         any    `json:"author"`
	Page           any    `json:"page"`
}

// Search handles POST /api/v1/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// A malformed body is an empty search, not an error.
		log.Warn("unparseable search request body", "error", err)
	}

	f := forum.Filters{
		Category: coerceID(req.Category),
		Answered: forum.ParseAnswered(req.AnsweredStatus),
		Author:   coerceID(req.Author),
	}
	page := coercePage(req.Page)

	result := h.service.Search(ctx, req.Query, f, page)
	h.writeJSON(w, http.StatusOK, result)
}

// SearchGet handles GET /api/v1/search, the recent-questions default page.
func (h *Handler) SearchGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := forum.Filters{
		Category: coerceID(q.Get("category")),
		Answered: forum.ParseAnswered(q.Get("answeredStatus")),
		Author:   coerceID(q.Get("author")),
	}
	page := coercePage(q.Get("page"))

	result := h.service.Search(r.Context(), q.Get("q"), f, page)
	h.writeJSON(w, http.StatusOK, result)
}

// indexRequest is the POST /api/v1/index body.
type indexRequest struct {
	PostID any    `json:"post_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Index handles POST /api/v1/index, invoked by the forum application after a
// question, answer, or edit appendage commits.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid request body"))
		return
	}
	postID := coerceID(req.PostID)
	if postID <= 0 {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "post_id is required"))
		return
	}

	h.indexer.IndexPost(postID, req.Title, req.Body)
	h.writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	h.writeJSON(w, apperrors.HTTPStatusCode(err), map[string]string{"error": err.Error()})
}

// coerceID extracts a positive integer from a loosely-typed field. Anything
// else (absent, non-numeric, zero, negative) means "no constraint".
func coerceID(v any) int64 {
	n := coerceInt(v)
	if n < 0 {
		return 0
	}
	return n
}

// coercePage extracts a page number, defaulting anything unusable to 1.
func coercePage(v any) int {
	n := coerceInt(v)
	if n < 1 {
		return 1
	}
	return int(n)
}

func coerceInt(v any) int64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return int64(t)
	case int:
		return int64(t)
	case int64:
		return t
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0
		}
		return n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
