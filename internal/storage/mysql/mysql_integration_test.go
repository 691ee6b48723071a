//go:build integration || !unit

package mysql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"travel_query/internal/domain"
	mysqlrepo "travel_query/internal/storage/mysql"
	"travel_query/internal/storage/mysql/mysqltest"
)

func pkind(k domain.SearchKind) *domain.SearchKind { return &k }

func TestRepo_MySQL_SaveGetList(t *testing.T) {
	repo := mysqlrepo.New(mysqltest.Start(t))
	ctx := context.Background()

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	seed := []domain.SearchRecord{
		{ID: "f1", Kind: domain.KindFlights, Param: "GhoS", URL: "https://example.test/f1", CreatedAt: base},
		{ID: "h1", Kind: domain.KindHotels, Param: "CAEa", URL: "https://example.test/h1", CreatedAt: base.Add(time.Minute)},
		{ID: "f2", Kind: domain.KindFlights, Param: "GiAS", URL: "https://example.test/f2", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, s := range seed {
		if err := repo.SaveSearch(ctx, s); err != nil {
			t.Fatalf("SaveSearch %s: %v", s.ID, err)
		}
	}

	got, err := repo.GetSearch(ctx, "h1")
	if err != nil {
		t.Fatalf("GetSearch: %v", err)
	}
	if got.Kind != domain.KindHotels || got.Param != "CAEa" || !got.CreatedAt.Equal(seed[1].CreatedAt) {
		t.Fatalf("unexpected record: %+v", got)
	}
	if _, err := repo.GetSearch(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// newest first, two per page
	p1, err := repo.ListSearches(ctx, domain.SearchesQuery{Limit: 2})
	if err != nil {
		t.Fatalf("ListSearches: %v", err)
	}
	if len(p1.Items) != 2 || p1.Items[0].ID != "f2" || p1.Items[1].ID != "h1" || p1.NextCursor == nil {
		t.Fatalf("unexpected first page: %+v", p1)
	}
	p2, err := repo.ListSearches(ctx, domain.SearchesQuery{Limit: 2, Cursor: p1.NextCursor})
	if err != nil {
		t.Fatalf("ListSearches page 2: %v", err)
	}
	if len(p2.Items) != 1 || p2.Items[0].ID != "f1" || p2.NextCursor != nil {
		t.Fatalf("unexpected second page: %+v", p2)
	}

	flights, err := repo.ListSearches(ctx, domain.SearchesQuery{Limit: 10, Kind: pkind(domain.KindFlights)})
	if err != nil {
		t.Fatalf("ListSearches by kind: %v", err)
	}
	if len(flights.Items) != 2 {
		t.Fatalf("expected 2 flight records, got %+v", flights.Items)
	}

	// re-saving moves the record to the top
	again := seed[0]
	again.CreatedAt = base.Add(time.Hour)
	if err := repo.SaveSearch(ctx, again); err != nil {
		t.Fatalf("SaveSearch again: %v", err)
	}
	top, _ := repo.ListSearches(ctx, domain.SearchesQuery{Limit: 1})
	if len(top.Items) != 1 || top.Items[0].ID != "f1" {
		t.Fatalf("re-saved record should be newest: %+v", top.Items)
	}

	if _, err := repo.ListSearches(ctx, domain.SearchesQuery{Limit: 2, Cursor: ptrStr("garbage")}); !errors.Is(err, domain.ErrBadCursor) {
		t.Fatalf("expected ErrBadCursor, got %v", err)
	}
}

func ptrStr(s string) *string { return &s }
