package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"travel_query/internal/adapters/observability"
	"travel_query/internal/codec"
	"travel_query/internal/domain"
)

// LinkService validates and encodes requests into search links, and keeps
// a history of every link it produced or imported.
type LinkService struct {
	repo  domain.SearchRepository
	cache domain.Cache
	links LinkConfig
	now   func() time.Time
}

func NewLinkService(r domain.SearchRepository, c domain.Cache, links LinkConfig) *LinkService {
	return &LinkService{repo: r, cache: c, links: links, now: time.Now}
}

// FlightLink builds the tfs link for r. Storage failures are logged and do
// not fail the call.
func (s *LinkService) FlightLink(ctx context.Context, r domain.FlightSearchRequest) (domain.SearchRecord, error) {
	if err := r.Validate(); err != nil {
		return domain.SearchRecord{}, err
	}
	b, err := codec.EncodeFlight(r)
	observability.ObserveCodec(string(domain.KindFlights), "encode", err)
	if err != nil {
		return domain.SearchRecord{}, err
	}
	param := EncodeParam(domain.KindFlights, b)
	rec := s.newRecord(domain.KindFlights, param, s.links.FlightURL(param))
	s.record(ctx, rec)
	return rec, nil
}

// HotelLink builds the ts link for r. The request is normalized first, as
// the builder would have; an empty currency falls back to the configured one.
func (s *LinkService) HotelLink(ctx context.Context, r domain.HotelSearchRequest) (domain.SearchRecord, error) {
	r = r.Normalize()
	if r.Currency == "" {
		r.Currency = s.links.Currency
	}
	if err := r.Validate(); err != nil {
		return domain.SearchRecord{}, err
	}
	b, err := codec.EncodeHotel(r)
	observability.ObserveCodec(string(domain.KindHotels), "encode", err)
	if err != nil {
		return domain.SearchRecord{}, err
	}
	param := EncodeParam(domain.KindHotels, b)
	rec := s.newRecord(domain.KindHotels, param, s.links.HotelURL(r.Location, param))
	s.record(ctx, rec)
	return rec, nil
}

// ImportLink decodes a link found elsewhere and stores it. Unlike the link
// builders it fails when the record cannot be saved.
func (s *LinkService) ImportLink(ctx context.Context, raw string) (domain.SearchRecord, domain.DecodedLink, error) {
	p, err := ParseLink(raw)
	if err != nil {
		return domain.SearchRecord{}, domain.DecodedLink{}, err
	}
	d, err := decodeParsed(p)
	if err != nil {
		return domain.SearchRecord{}, domain.DecodedLink{}, err
	}

	link := raw
	switch d.Kind {
	case domain.KindFlights:
		link = s.links.FlightURL(p.Param)
	case domain.KindHotels:
		d.Hotel.Location = p.Location
		link = s.links.HotelURL(p.Location, p.Param)
	}
	rec := s.newRecord(d.Kind, p.Param, link)
	if err := s.repo.SaveSearch(ctx, rec); err != nil {
		return domain.SearchRecord{}, domain.DecodedLink{}, fmt.Errorf("save search %s: %w", rec.ID, err)
	}
	s.invalidate(ctx, rec.ID)
	return rec, d, nil
}

func (s *LinkService) newRecord(kind domain.SearchKind, param, link string) domain.SearchRecord {
	return domain.SearchRecord{
		ID:        SearchID(kind, param),
		Kind:      kind,
		Param:     param,
		URL:       link,
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}
}

func (s *LinkService) record(ctx context.Context, rec domain.SearchRecord) {
	if s.repo == nil {
		return
	}
	if err := s.repo.SaveSearch(ctx, rec); err != nil {
		log.Warn().Err(err).Str("id", rec.ID).Str("kind", string(rec.Kind)).Msg("save search failed")
		return
	}
	s.invalidate(ctx, rec.ID)
}

// a re-saved record gets a fresh created_at
func (s *LinkService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, searchKey(id))
}

// SearchID derives a stable id from the payload, so the same search is
// stored once.
func SearchID(kind domain.SearchKind, param string) string {
	sum := sha1.Sum([]byte(string(kind) + ":" + param))
	return hex.EncodeToString(sum[:10])
}

func searchKey(id string) string { return "search:" + id }
