package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/campusqa/forumsearch/internal/forum"
	apperrors "github.com/campusqa/forumsearch/pkg/errors"
	"github.com/campusqa/forumsearch/pkg/postgres"
)

// Schema is the DDL for the tables the index owns. The posts and categories
// tables belong to the content store; the read side only joins against them.
// Terms are never deleted, and postings for deleted posts are not cleaned up.
const Schema = `
CREATE TABLE IF NOT EXISTS terms (
    id   BIGSERIAL PRIMARY KEY,
    stem TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS postings (
    term_id BIGINT NOT NULL REFERENCES terms (id),
    post_id BIGINT NOT NULL,
    weight  DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (term_id, post_id)
);

CREATE INDEX IF NOT EXISTS postings_post_id_idx ON postings (post_id);
`

// PostgresStore implements Store on PostgreSQL via lib/pq.
type PostgresStore struct {
	db *postgres.Client
}

// NewPostgresStore creates a PostgresStore backed by the given client.
func NewPostgresStore(db *postgres.Client) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the index-owned tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("creating index tables: %w", err)
	}
	return nil
}

// UpsertPostings implements Store. All postings from one fragment are written
// in a single transaction; concurrent writers to the same (term, post) pair
// race with last-writer-wins semantics.
func (s *PostgresStore) UpsertPostings(ctx context.Context, postID int64, weights map[string]float64) error {
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		for stem, weight := range weights {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO terms (stem) VALUES ($1) ON CONFLICT (stem) DO NOTHING`,
				stem,
			); err != nil {
				return fmt.Errorf("ensuring term %q: %w", stem, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO postings (term_id, post_id, weight)
				 SELECT id, $2, $3 FROM terms WHERE stem = $1
				 ON CONFLICT (term_id, post_id) DO UPDATE SET weight = EXCLUDED.weight`,
				stem, postID, weight,
			); err != nil {
				return fmt.Errorf("upserting posting (%q, %d): %w", stem, postID, err)
			}
		}
		return nil
	})
}

const postColumns = `p.id, p.post_type, COALESCE(p.title, ''), p.body,
	COALESCE(p.category_id, 0), COALESCE(c.name, ''),
	p.author_id, p.answer_count, p.upvotes, p.created_at`

// SearchRanked implements Store.
func (s *PostgresStore) SearchRanked(ctx context.Context, stems []string, f forum.Filters, limit, offset int) ([]forum.Post, error) {
	where, args := filterClauses(f, []any{pq.Array(prefixPatterns(stems))})
	q := fmt.Sprintf(`
		SELECT %s, SUM(pt.weight) AS score
		FROM postings pt
		JOIN terms t ON t.id = pt.term_id
		JOIN posts p ON p.id = pt.post_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE t.stem LIKE ANY($1)%s
		GROUP BY p.id, c.name
		ORDER BY score DESC, p.id DESC
		LIMIT $%d OFFSET $%d`,
		postColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ranked search: %v", apperrors.ErrStoreUnavailable, err)
	}
	defer rows.Close()
	return scanPosts(rows, true)
}

// CountRanked implements Store.
func (s *PostgresStore) CountRanked(ctx context.Context, stems []string, f forum.Filters, max int) (int, error) {
	where, args := filterClauses(f, []any{pq.Array(prefixPatterns(stems))})
	q := fmt.Sprintf(`
		SELECT COUNT(*) FROM (
			SELECT pt.post_id
			FROM postings pt
			JOIN terms t ON t.id = pt.term_id
			JOIN posts p ON p.id = pt.post_id
			WHERE t.stem LIKE ANY($1)%s
			GROUP BY pt.post_id
			LIMIT $%d
		) capped`, where, len(args)+1)
	args = append(args, max)

	var count int
	if err := s.db.DB.QueryRowContext(ctx, q, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: ranked count: %v", apperrors.ErrStoreUnavailable, err)
	}
	return count, nil
}

// SearchRecent implements Store.
func (s *PostgresStore) SearchRecent(ctx context.Context, f forum.Filters, limit, offset int) ([]forum.Post, error) {
	where, args := filterClauses(f, nil)
	q := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE TRUE%s
		ORDER BY p.id DESC
		LIMIT $%d OFFSET $%d`,
		postColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: recent search: %v", apperrors.ErrStoreUnavailable, err)
	}
	defer rows.Close()
	return scanPosts(rows, false)
}

// CountRecent implements Store.
func (s *PostgresStore) CountRecent(ctx context.Context, f forum.Filters, max int) (int, error) {
	where, args := filterClauses(f, nil)
	q := fmt.Sprintf(`
		SELECT COUNT(*) FROM (
			SELECT p.id FROM posts p WHERE TRUE%s LIMIT $%d
		) capped`, where, len(args)+1)
	args = append(args, max)

	var count int
	if err := s.db.DB.QueryRowContext(ctx, q, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: recent count: %v", apperrors.ErrStoreUnavailable, err)
	}
	return count, nil
}

// prefixPatterns turns query stems into LIKE prefix patterns. Stems contain
// only [a-z], so no LIKE metacharacter escaping is needed.
func prefixPatterns(stems []string) []string {
	patterns := make([]string, 0, len(stems))
	for _, s := range stems {
		patterns = append(patterns, s+"%")
	}
	return patterns
}

// filterClauses appends AND clauses for the structural filters, extending
// args with their values. Zero-valued filters produce no clause.
func filterClauses(f forum.Filters, args []any) (string, []any) {
	var b strings.Builder
	if f.Category != 0 {
		args = append(args, f.Category)
		fmt.Fprintf(&b, " AND p.category_id = $%d", len(args))
	}
	if f.Author != 0 {
		args = append(args, f.Author)
		fmt.Fprintf(&b, " AND p.author_id = $%d", len(args))
	}
	switch f.Answered {
	case forum.AnsweredOnly:
		b.WriteString(" AND p.answer_count > 0")
	case forum.UnansweredOnly:
		b.WriteString(" AND p.answer_count = 0")
	}
	return b.String(), args
}

func scanPosts(rows *sql.Rows, withScore bool) ([]forum.Post, error) {
	posts := make([]forum.Post, 0)
	for rows.Next() {
		var p forum.Post
		dest := []any{
			&p.ID, &p.Type, &p.Title, &p.Body,
			&p.CategoryID, &p.CategoryName,
			&p.AuthorID, &p.AnswerCount, &p.Upvotes, &p.CreatedAt,
		}
		if withScore {
			dest = append(dest, &p.Score)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating post rows: %w", err)
	}
	return posts, nil
}
