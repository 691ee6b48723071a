package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Declaration order below carries no wire meaning; wire integers live in
// the codec's tables.

type CabinClass int

const (
	CabinUnknown CabinClass = iota
	CabinEconomy
	CabinPremiumEconomy
	CabinBusiness
	CabinFirst
)

type TripType int

const (
	TripRoundTrip TripType = iota
	TripOneWay
	TripMultiCity
)

type PassengerType int

const (
	PassengerAdult PassengerType = iota
	PassengerChild
	PassengerInfantInSeat
	PassengerInfantOnLap
)

// PassengerOrder is the order passenger units are laid out on the wire.
var PassengerOrder = []PassengerType{
	PassengerAdult,
	PassengerChild,
	PassengerInfantInSeat,
	PassengerInfantOnLap,
}

type Amenity int

const (
	AmenityIndoorPool Amenity = iota
	AmenityOutdoorPool
	AmenityPool
	AmenitySpa
	AmenityKidFriendly
	AmenityAirConditioned
)

// SortType orders hotel results. Relevance is the absence of a SortType.
type SortType int

const (
	SortLowestPrice SortType = iota
	SortHighestRating
	SortMostReviewed
)

var ErrUnknownName = errors.New("unknown name")

/********** alias registries (first name is canonical) **********/

var cabinNames = newNames("cabin class",
	nameEntry[CabinClass]{CabinUnknown, []string{"unknown"}},
	nameEntry[CabinClass]{CabinEconomy, []string{"economy", "eco", "coach"}},
	nameEntry[CabinClass]{CabinPremiumEconomy, []string{"premium_economy", "premium"}},
	nameEntry[CabinClass]{CabinBusiness, []string{"business"}},
	nameEntry[CabinClass]{CabinFirst, []string{"first"}},
)

var tripNames = newNames("trip type",
	nameEntry[TripType]{TripRoundTrip, []string{"round_trip", "round", "return"}},
	nameEntry[TripType]{TripOneWay, []string{"one_way", "single"}},
	nameEntry[TripType]{TripMultiCity, []string{"multi_city", "multi"}},
)

var passengerNames = newNames("passenger type",
	nameEntry[PassengerType]{PassengerAdult, []string{"adult", "adults"}},
	nameEntry[PassengerType]{PassengerChild, []string{"child", "children"}},
	nameEntry[PassengerType]{PassengerInfantInSeat, []string{"infant_in_seat"}},
	nameEntry[PassengerType]{PassengerInfantOnLap, []string{"infant_on_lap", "infant", "lap_infant"}},
)

var amenityNames = newNames("amenity",
	nameEntry[Amenity]{AmenityIndoorPool, []string{"indoor_pool", "indoor"}},
	nameEntry[Amenity]{AmenityOutdoorPool, []string{"outdoor_pool", "outdoor"}},
	nameEntry[Amenity]{AmenityPool, []string{"pool"}},
	nameEntry[Amenity]{AmenitySpa, []string{"spa"}},
	nameEntry[Amenity]{AmenityKidFriendly, []string{"kid_friendly", "kid", "kids"}},
	nameEntry[Amenity]{AmenityAirConditioned, []string{"air_conditioned", "air_conditioning", "ac"}},
)

var sortNames = newNames("sort order",
	nameEntry[SortType]{SortLowestPrice, []string{"lowest_price", "lowest", "price"}},
	nameEntry[SortType]{SortHighestRating, []string{"highest_rating", "highest", "rating"}},
	nameEntry[SortType]{SortMostReviewed, []string{"most_reviewed", "reviewed", "reviews"}},
)

/********** cabin class **********/

func ParseCabinClass(s string) (CabinClass, error) { return cabinNames.parse(s) }
func (c CabinClass) String() string { return cabinNames.name(c) }
func (c CabinClass) Valid() bool { return cabinNames.known(c) }
func (c CabinClass) MarshalText() ([]byte, error) { return cabinNames.marshal(c) }
func (c *CabinClass) UnmarshalText(b []byte) error {
	v, err := cabinNames.parse(string(b))
	*c = v
	return err
}

/********** trip type **********/

func ParseTripType(s string) (TripType, error) { return tripNames.parse(s) }
func (t TripType) String() string { return tripNames.name(t) }
func (t TripType) Valid() bool { return tripNames.known(t) }
func (t TripType) MarshalText() ([]byte, error) {
	return tripNames.marshal(t)
}
func (t *TripType) UnmarshalText(b []byte) error {
	v, err := tripNames.parse(string(b))
	*t = v
	return err
}

/********** passenger type **********/

func ParsePassengerType(s string) (PassengerType, error) { return passengerNames.parse(s) }
func (p PassengerType) String() string { return passengerNames.name(p) }
func (p PassengerType) Valid() bool { return passengerNames.known(p) }
func (p PassengerType) MarshalText() ([]byte, error) { return passengerNames.marshal(p) }
func (p *PassengerType) UnmarshalText(b []byte) error {
	v, err := passengerNames.parse(string(b))
	*p = v
	return err
}

/********** amenity **********/

func ParseAmenity(s string) (Amenity, error) { return amenityNames.parse(s) }
func (a Amenity) String() string { return amenityNames.name(a) }
func (a Amenity) Valid() bool { return amenityNames.known(a) }
func (a Amenity) MarshalText() ([]byte, error) { return amenityNames.marshal(a) }
func (a *Amenity) UnmarshalText(b []byte) error {
	v, err := amenityNames.parse(string(b))
	*a = v
	return err
}

// ParseAmenities splits names into known amenities and the names it could
// not resolve.
func ParseAmenities(names []string) (known []Amenity, unknown []string) {
	for _, n := range names {
		if a, err := ParseAmenity(n); err == nil {
			known = append(known, a)
		} else {
			unknown = append(unknown, n)
		}
	}
	return known, unknown
}

/********** sort order **********/

func ParseSortType(s string) (SortType, error) { return sortNames.parse(s) }

// ParseSortOrder maps "", "relevance" and "unspecified" to nil.
func ParseSortOrder(s string) (*SortType, error) {
	switch normalizeName(s) {
	case "", "relevance", "unspecified", "default":
		return nil, nil
	}
	v, err := sortNames.parse(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s SortType) String() string { return sortNames.name(s) }
func (s SortType) Valid() bool { return sortNames.known(s) }
func (s SortType) MarshalText() ([]byte, error) { return sortNames.marshal(s) }
func (s *SortType) UnmarshalText(b []byte) error {
	v, err := sortNames.parse(string(b))
	*s = v
	return err
}

/********** helpers **********/

type enum interface{ ~int }

type nameEntry[T enum] struct {
	value T
	names []string
}

type names[T enum] struct {
	kind      string
	canonical map[T]string
	aliases   map[string]T
}

func newNames[T enum](kind string, entries ...nameEntry[T]) names[T] {
	n := names[T]{
		kind:      kind,
		canonical: make(map[T]string, len(entries)),
		aliases:   make(map[string]T, len(entries)*3),
	}
	for _, e := range entries {
		n.canonical[e.value] = e.names[0]
		for _, alias := range e.names {
			n.aliases[normalizeName(alias)] = e.value
		}
	}
	return n
}

// normalizeName folds case and drops separators so "round-trip",
// "Round_Trip" and "roundtrip" compare equal.
func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

func (n names[T]) parse(s string) (T, error) {
	if v, ok := n.aliases[normalizeName(s)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %s %q", ErrUnknownName, n.kind, s)
}

func (n names[T]) name(v T) string {
	if s, ok := n.canonical[v]; ok {
		return s
	}
	return fmt.Sprintf("%s(%d)", strings.ReplaceAll(n.kind, " ", "_"), int(v))
}

func (n names[T]) known(v T) bool {
	_, ok := n.canonical[v]
	return ok
}

func (n names[T]) marshal(v T) ([]byte, error) {
	s, ok := n.canonical[v]
	if !ok {
		return nil, fmt.Errorf("%w: %s %d", ErrUnknownName, n.kind, int(v))
	}
	return []byte(s), nil
}
