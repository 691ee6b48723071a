package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"travel_query/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) SaveSearch(ctx context.Context, s domain.SearchRecord) error {
	_, err := r.db.ExecContext(ctx, upsertSearchSQL,
		s.ID,
		string(s.Kind),
		s.Param,
		s.URL,
		s.CreatedAt.UTC(),
	)
	return err
}

func (r *Repo) GetSearch(ctx context.Context, id string) (domain.SearchRecord, error) {
	row := r.db.QueryRowContext(ctx, getSearchSQL, id)
	s, err := scanSearch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SearchRecord{}, domain.ErrNotFound
	}
	return s, err
}

func (r *Repo) ListSearches(ctx context.Context, q domain.SearchesQuery) (domain.SearchesPage, error) {
	kind := ""
	if q.Kind != nil {
		kind = string(*q.Kind)
	}
	var (
		afterAt any
		afterID string
	)
	if q.Cursor != nil && *q.Cursor != "" {
		at, id, err := parseCursor(*q.Cursor)
		if err != nil {
			return domain.SearchesPage{}, err
		}
		afterAt, afterID = at, id
	}

	// one extra row tells us whether another page exists
	rows, err := r.db.QueryContext(ctx, listSearchesSQL,
		kind, kind,
		afterAt, afterAt, afterAt, afterID,
		q.Limit+1,
	)
	if err != nil {
		return domain.SearchesPage{}, err
	}
	defer rows.Close()

	var out domain.SearchesPage
	for rows.Next() {
		s, err := scanSearch(rows)
		if err != nil {
			return domain.SearchesPage{}, err
		}
		out.Items = append(out.Items, s)
	}
	if err := rows.Err(); err != nil {
		return domain.SearchesPage{}, err
	}
	if len(out.Items) > q.Limit {
		out.Items = out.Items[:q.Limit]
		last := out.Items[len(out.Items)-1]
		c := formatCursor(last.CreatedAt, last.ID)
		out.NextCursor = &c
	}
	return out, nil
}

type scanner interface{ Scan(dest ...any) error }

func scanSearch(sc scanner) (domain.SearchRecord, error) {
	var (
		s    domain.SearchRecord
		kind string
	)
	if err := sc.Scan(&s.ID, &kind, &s.Param, &s.URL, &s.CreatedAt); err != nil {
		return domain.SearchRecord{}, err
	}
	s.Kind = domain.SearchKind(kind)
	s.CreatedAt = s.CreatedAt.UTC()
	return s, nil
}

// ---- cursor: "<unix seconds>.<id>" ----

func formatCursor(at time.Time, id string) string {
	return strconv.FormatInt(at.Unix(), 10) + "." + id
}

func parseCursor(c string) (time.Time, string, error) {
	secs, id, ok := strings.Cut(c, ".")
	if !ok || id == "" {
		return time.Time{}, "", fmt.Errorf("%w: %q", domain.ErrBadCursor, c)
	}
	n, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %q", domain.ErrBadCursor, c)
	}
	return time.Unix(n, 0).UTC(), id, nil
}
