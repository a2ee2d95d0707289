package store

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/poetry-platform/internal/platform/metrics"
)

const poemColumns = `p.id, p.title, p.content, t.name AS poet, t.dynasty
	FROM poem p
	JOIN poet t ON p.poet_id = t.id`

// PostgresStore persists poems, poets and comments in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by Postgres.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) ListPoems(ctx context.Context, search string) (out []Poem, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("list_poems", start, err) }(time.Now())

	q := `SELECT ` + poemColumns
	args := []any{}
	if search = strings.TrimSpace(search); search != "" {
		q += `
	WHERE p.title ILIKE $1 OR t.name ILIKE $1 OR p.content ILIKE $1 OR t.dynasty ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	q += `
	ORDER BY p.id
	LIMIT ` + strconv.Itoa(MaxPoems)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out = []Poem{}
	for rows.Next() {
		var p Poem
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Poet, &p.Dynasty); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetPoem(ctx context.Context, id int64) (p Poem, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("get_poem", start, err) }(time.Now())

	err = s.pool.QueryRow(ctx, `SELECT `+poemColumns+` WHERE p.id = $1`, id).
		Scan(&p.ID, &p.Title, &p.Content, &p.Poet, &p.Dynasty)
	if errors.Is(err, pgx.ErrNoRows) {
		return Poem{}, ErrNotFound
	}
	return p, err
}

func (s *PostgresStore) FindPoemByTitle(ctx context.Context, title string) (p Poem, found bool, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("find_poem_by_title", start, err) }(time.Now())

	err = s.pool.QueryRow(ctx, `SELECT `+poemColumns+` WHERE TRIM(p.title) = $1 ORDER BY p.id LIMIT 1`,
		strings.TrimSpace(title)).
		Scan(&p.ID, &p.Title, &p.Content, &p.Poet, &p.Dynasty)
	if errors.Is(err, pgx.ErrNoRows) {
		return Poem{}, false, nil
	}
	if err != nil {
		return Poem{}, false, err
	}
	return p, true, nil
}

func (s *PostgresStore) ListComments(ctx context.Context, poemID int64) (out []CommentRecord, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("list_comments", start, err) }(time.Now())

	const q = `SELECT c.id, c.poem_id, c.content, c.username, c.created_at, c.parent_id,
	                  p.username AS parent_username
	           FROM comment c
	           LEFT JOIN comment p ON c.parent_id = p.id
	           WHERE c.poem_id = $1
	           ORDER BY c.created_at ASC, c.id ASC`
	rows, err := s.pool.Query(ctx, q, poemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out = []CommentRecord{}
	for rows.Next() {
		var c CommentRecord
		if err := rows.Scan(&c.ID, &c.PoemID, &c.Content, &c.Username, &c.CreatedAt,
			&c.ParentID, &c.ParentUsername); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateComment(ctx context.Context, c NewComment) (id int64, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("create_comment", start, err) }(time.Now())

	if strings.TrimSpace(c.Username) == "" {
		c.Username = DefaultUsername
	}
	const q = `INSERT INTO comment (poem_id, content, username, parent_id)
	           VALUES ($1, $2, $3, $4)
	           RETURNING id`
	err = s.pool.QueryRow(ctx, q, c.PoemID, c.Content, c.Username, c.ParentID).Scan(&id)
	return id, err
}

func (s *PostgresStore) Relationships(ctx context.Context) (g RelationshipGraph, err error) {
	defer func(start time.Time) { metrics.ObserveQuery("relationships", start, err) }(time.Now())

	g.Nodes, err = collect(ctx, s.pool, `SELECT name, dynasty FROM poet ORDER BY id`,
		func(rows pgx.Rows) (GraphNode, error) {
			var n GraphNode
			err := rows.Scan(&n.ID, &n.Group)
			return n, err
		})
	if err != nil {
		return RelationshipGraph{}, err
	}
	g.Links, err = collect(ctx, s.pool,
		`SELECT poet_a_name, poet_b_name, relation, value FROM poet_relationship ORDER BY id`,
		func(rows pgx.Rows) (GraphLink, error) {
			var l GraphLink
			err := rows.Scan(&l.Source, &l.Target, &l.Relation, &l.Value)
			return l, err
		})
	if err != nil {
		return RelationshipGraph{}, err
	}
	return g, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func collect[T any](ctx context.Context, pool *pgxpool.Pool, q string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	rows, err := pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
