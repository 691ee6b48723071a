package domain

import (
	"time"
	"unicode"
)

const (
	MaxGuests      = 6
	MaxNights      = 30
	MinChildAge    = 1
	MaxChildAge    = 17
	MinHotelStars  = 2
	MaxHotelStars  = 5
	MaxGuestRating = 5.0

	// DefaultAdults is assumed when a decoded payload lists no guests.
	DefaultAdults = 2

	// HotelPayloadVersion is the only payload version the encoder writes.
	HotelPayloadVersion = 1
)

// ResolvedLocation is only ever read from payloads taken from real search
// URLs; the encoder never writes it.
type ResolvedLocation struct {
	ID          string `json:"id,omitempty"`
	Coordinates string `json:"coordinates,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// HotelSearchRequest is the input to the hotel query codec. Location is the
// human query carried next to the payload in the URL, never inside it.
type HotelSearchRequest struct {
	Version        int               `json:"version"`
	Location       string            `json:"location"`
	Adults         int               `json:"adults"`
	ChildrenAges   []int             `json:"children_ages,omitempty"`
	CheckinDate    string            `json:"checkin_date"`
	CheckoutDate   string            `json:"checkout_date"`
	Nights         int               `json:"nights"`
	Currency       string            `json:"currency,omitempty"`
	MinGuestRating *float64          `json:"min_guest_rating,omitempty"`
	HotelStars     []int             `json:"hotel_stars,omitempty"`
	Amenities      []Amenity         `json:"amenities,omitempty"`
	MinPrice       *int              `json:"min_price,omitempty"`
	MaxPrice       *int              `json:"max_price,omitempty"`
	SortOrder      *SortType         `json:"sort_order,omitempty"`
	ExplicitGuests bool              `json:"explicit_guests,omitempty"`
	Resolved       *ResolvedLocation `json:"resolved,omitempty"`
}

// NeedsExplicitGuests reports whether the guest picker had to be opened to
// describe this party.
func (r HotelSearchRequest) NeedsExplicitGuests() bool {
	return r.Adults > 2 || len(r.ChildrenAges) > 0
}

// Validate checks every hotel rule and reports all failures together.
func (r HotelSearchRequest) Validate() error {
	var vs violations

	if r.Version != 0 && r.Version != HotelPayloadVersion {
		vs.add("version", "unsupported payload version %d", r.Version)
	}
	if r.Adults < 1 {
		vs.add("adults", "at least one adult is required")
	}
	if total := r.Adults + len(r.ChildrenAges); total > MaxGuests {
		vs.add("guests", "maximum %d guests allowed, got %d", MaxGuests, total)
	}
	for _, age := range r.ChildrenAges {
		if age < MinChildAge || age > MaxChildAge {
			vs.add("children_ages", "age %d outside %d-%d", age, MinChildAge, MaxChildAge)
		}
	}

	in, inErr := ParseDate(r.CheckinDate)
	if inErr != nil {
		vs.add("checkin_date", "invalid date %q, want YYYY-MM-DD", r.CheckinDate)
	}
	out, outErr := ParseDate(r.CheckoutDate)
	if outErr != nil {
		vs.add("checkout_date", "invalid date %q, want YYYY-MM-DD", r.CheckoutDate)
	}
	if inErr == nil && outErr == nil {
		nights := NightsBetween(in, out)
		switch {
		case nights < 1:
			vs.add("checkout_date", "checkout must be after checkin")
		case nights > MaxNights:
			vs.add("checkout_date", "stay must be %d nights or fewer, got %d", MaxNights, nights)
		}
	}

	if r.MinPrice != nil && *r.MinPrice <= 0 {
		vs.add("min_price", "price must be positive")
	}
	if r.MaxPrice != nil && *r.MaxPrice <= 0 {
		vs.add("max_price", "price must be positive")
	}
	if r.MinPrice != nil && r.MaxPrice != nil && *r.MinPrice > *r.MaxPrice {
		vs.add("min_price", "minimum price cannot be greater than maximum price")
	}

	for _, s := range r.HotelStars {
		if s < MinHotelStars || s > MaxHotelStars {
			vs.add("hotel_stars", "star rating %d outside %d-%d", s, MinHotelStars, MaxHotelStars)
		}
	}
	for _, a := range r.Amenities {
		if !a.Valid() {
			vs.add("amenities", "unknown amenity %d", int(a))
		}
	}
	if r.SortOrder != nil && !r.SortOrder.Valid() {
		vs.add("sort_order", "unknown sort order %d", int(*r.SortOrder))
	}
	if g := r.MinGuestRating; g != nil && (*g < 0 || *g > MaxGuestRating) {
		vs.add("min_guest_rating", "rating %.1f outside 0-5", *g)
	}
	if r.Currency != "" && !isCurrencyCode(r.Currency) {
		vs.add("currency", "currency %q is not a three letter code", r.Currency)
	}

	return vs.err()
}

// Normalize applies the builder's rules to a request assembled elsewhere,
// such as one bound from JSON. A child age of 0 becomes MinChildAge, the
// version is pinned, the resolved location is dropped and the derived
// fields are recomputed from the dates and guests.
func (r HotelSearchRequest) Normalize() HotelSearchRequest {
	r.Version = HotelPayloadVersion
	r.Resolved = nil
	if len(r.ChildrenAges) > 0 {
		ages := make([]int, len(r.ChildrenAges))
		for i, a := range r.ChildrenAges {
			if a == 0 {
				a = MinChildAge
			}
			ages[i] = a
		}
		r.ChildrenAges = ages
	}
	r.Nights = 0
	in, inErr := ParseDate(r.CheckinDate)
	out, outErr := ParseDate(r.CheckoutDate)
	if inErr == nil && outErr == nil {
		r.Nights = NightsBetween(in, out)
	}
	r.ExplicitGuests = r.NeedsExplicitGuests()
	return r
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, c := range s {
		if c > unicode.MaxASCII || !unicode.IsLetter(c) {
			return false
		}
	}
	return true
}

/********** builder **********/

// HotelSearchBuilder assembles a HotelSearchRequest step by step. No rule
// is checked until Build.
type HotelSearchBuilder struct {
	location          string
	checkin, checkout time.Time
	adults            int
	childrenAges      []int
	currency          string
	minGuestRating    *float64
	stars             []int
	amenities         []Amenity
	minPrice          *int
	maxPrice          *int
	sort              *SortType
}

// NewHotelSearch starts a hotel search. A child age of 0 is stored as 1.
func NewHotelSearch(location string, checkin, checkout time.Time, adults int, childrenAges ...int) *HotelSearchBuilder {
	ages := make([]int, 0, len(childrenAges))
	for _, a := range childrenAges {
		if a == 0 {
			a = MinChildAge
		}
		ages = append(ages, a)
	}
	return &HotelSearchBuilder{
		location:     location,
		checkin:      checkin,
		checkout:     checkout,
		adults:       adults,
		childrenAges: ages,
	}
}

func (b *HotelSearchBuilder) Currency(code string) *HotelSearchBuilder {
	b.currency = code
	return b
}

func (b *HotelSearchBuilder) MinGuestRating(r float64) *HotelSearchBuilder {
	b.minGuestRating = &r
	return b
}

func (b *HotelSearchBuilder) HotelStars(stars ...int) *HotelSearchBuilder {
	b.stars = append([]int(nil), stars...)
	return b
}

func (b *HotelSearchBuilder) Amenities(as ...Amenity) *HotelSearchBuilder {
	b.amenities = append([]Amenity(nil), as...)
	return b
}

func (b *HotelSearchBuilder) MinPrice(p int) *HotelSearchBuilder {
	b.minPrice = &p
	return b
}

func (b *HotelSearchBuilder) MaxPrice(p int) *HotelSearchBuilder {
	b.maxPrice = &p
	return b
}

// SortOrder sets the result order; nil means relevance.
func (b *HotelSearchBuilder) SortOrder(s *SortType) *HotelSearchBuilder {
	b.sort = s
	return b
}

func (b *HotelSearchBuilder) Build() (HotelSearchRequest, error) {
	r := HotelSearchRequest{
		Version:        HotelPayloadVersion,
		Location:       b.location,
		Adults:         b.adults,
		CheckinDate:    FormatDate(b.checkin),
		CheckoutDate:   FormatDate(b.checkout),
		Nights:         NightsBetween(b.checkin, b.checkout),
		Currency:       b.currency,
		MinGuestRating: b.minGuestRating,
		HotelStars:     b.stars,
		Amenities:      b.amenities,
		MinPrice:       b.minPrice,
		MaxPrice:       b.maxPrice,
		SortOrder:      b.sort,
	}
	if len(b.childrenAges) > 0 {
		r.ChildrenAges = append([]int(nil), b.childrenAges...)
	}
	r.ExplicitGuests = r.NeedsExplicitGuests()
	if err := r.Validate(); err != nil {
		return HotelSearchRequest{}, err
	}
	return r, nil
}
