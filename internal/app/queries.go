package app

import (
	"context"
	"time"

	"travel_query/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type QueryService struct {
	repo     domain.SearchRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.SearchRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// GetSearch returns a stored record with its payload decoded again.
func (s *QueryService) GetSearch(ctx context.Context, id string) (domain.SearchView, error) {
	key := searchKey(id)
	var v domain.SearchView
	if ok, _ := s.cache.Get(ctx, key, &v); ok {
		return v, nil
	}
	rec, err := s.repo.GetSearch(ctx, id)
	if err != nil {
		return domain.SearchView{}, err
	}
	d, err := decodeParam(rec.Kind, rec.Param)
	if err != nil {
		return domain.SearchView{}, err
	}
	v = domain.SearchView{Record: rec, Decoded: d}
	_ = s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds()))
	return v, nil
}

// ListSearches pages through stored records, newest first. Lists are not
// cached; every save would invalidate them.
func (s *QueryService) ListSearches(ctx context.Context, q domain.SearchesQuery) (domain.SearchesPage, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	page, err := s.repo.ListSearches(ctx, q)
	if err != nil {
		return domain.SearchesPage{}, err
	}
	return copySearchesPage(page), nil
}

func copySearchesPage(in domain.SearchesPage) domain.SearchesPage {
	out := domain.SearchesPage{NextCursor: in.NextCursor}
	if n := len(in.Items); n > 0 {
		out.Items = make([]domain.SearchRecord, n)
		copy(out.Items, in.Items)
	}
	return out
}
