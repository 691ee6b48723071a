package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrBadCursor = errors.New("invalid cursor")
)

type SearchKind string

const (
	KindFlights SearchKind = "flights"
	KindHotels  SearchKind = "hotels"
)

// Param names the URL query parameter that carries the kind's payload.
func (k SearchKind) Param() string {
	switch k {
	case KindFlights:
		return "tfs"
	case KindHotels:
		return "ts"
	}
	return ""
}

// SearchRecord is a generated or decoded search link as stored.
type SearchRecord struct {
	ID        string     `json:"id"`
	Kind      SearchKind `json:"kind"`
	Param     string     `json:"param"` // base64 payload as it appears in the URL
	URL       string     `json:"url"`
	CreatedAt time.Time  `json:"created_at"`
}

type SearchRepository interface {
	SaveSearch(ctx context.Context, r SearchRecord) error
	GetSearch(ctx context.Context, id string) (SearchRecord, error)
	ListSearches(ctx context.Context, q SearchesQuery) (SearchesPage, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models & queries
type SearchesQuery struct {
	Kind   *SearchKind
	Limit  int
	Cursor *string
}

type SearchesPage struct {
	Items      []SearchRecord
	NextCursor *string
}

// DecodedLink is a search URL turned back into a request. Exactly one of
// Flight and Hotel is set, matching Kind.
type DecodedLink struct {
	Kind   SearchKind           `json:"kind"`
	Param  string               `json:"param"`
	Flight *FlightSearchRequest `json:"flight,omitempty"`
	Hotel  *HotelSearchRequest  `json:"hotel,omitempty"`
}

// SearchView is a stored record with its payload decoded again.
type SearchView struct {
	Record  SearchRecord `json:"record"`
	Decoded DecodedLink  `json:"decoded"`
}
