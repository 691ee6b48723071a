package codec

import "travel_query/internal/domain"

// enumTable pairs each domain value with the integer written on the wire.
// Tables are written out by hand so reordering a domain enum never changes
// what goes on the wire.
type enumTable[T comparable] struct {
	toWire   map[T]uint64
	fromWire map[uint64]T
}

type wirePair[T comparable] struct {
	v    T
	wire uint64
}

func newEnumTable[T comparable](pairs ...wirePair[T]) enumTable[T] {
	t := enumTable[T]{
		toWire:   make(map[T]uint64, len(pairs)),
		fromWire: make(map[uint64]T, len(pairs)),
	}
	for _, p := range pairs {
		t.toWire[p.v] = p.wire
		t.fromWire[p.wire] = p.v
	}
	return t
}

func (t enumTable[T]) ToWire(v T) (uint64, bool) {
	w, ok := t.toWire[v]
	return w, ok
}

func (t enumTable[T]) FromWire(w uint64) (T, bool) {
	v, ok := t.fromWire[w]
	return v, ok
}

var (
	CabinTable = newEnumTable(
		wirePair[domain.CabinClass]{domain.CabinUnknown, 0},
		wirePair[domain.CabinClass]{domain.CabinEconomy, 1},
		wirePair[domain.CabinClass]{domain.CabinPremiumEconomy, 2},
		wirePair[domain.CabinClass]{domain.CabinBusiness, 3},
		wirePair[domain.CabinClass]{domain.CabinFirst, 4},
	)

	TripTable = newEnumTable(
		wirePair[domain.TripType]{domain.TripRoundTrip, 1},
		wirePair[domain.TripType]{domain.TripOneWay, 2},
		wirePair[domain.TripType]{domain.TripMultiCity, 3},
	)

	PassengerTable = newEnumTable(
		wirePair[domain.PassengerType]{domain.PassengerAdult, 1},
		wirePair[domain.PassengerType]{domain.PassengerChild, 2},
		wirePair[domain.PassengerType]{domain.PassengerInfantInSeat, 3},
		wirePair[domain.PassengerType]{domain.PassengerInfantOnLap, 4},
	)

	// 0 is relevance and never appears in this table.
	SortTable = newEnumTable(
		wirePair[domain.SortType]{domain.SortLowestPrice, 3},
		wirePair[domain.SortType]{domain.SortHighestRating, 8},
		wirePair[domain.SortType]{domain.SortMostReviewed, 13},
	)

	AmenityTable = newEnumTable(
		wirePair[domain.Amenity]{domain.AmenityIndoorPool, 4},
		wirePair[domain.Amenity]{domain.AmenityOutdoorPool, 5},
		wirePair[domain.Amenity]{domain.AmenityPool, 6},
		wirePair[domain.Amenity]{domain.AmenitySpa, 10},
		wirePair[domain.Amenity]{domain.AmenityKidFriendly, 12},
		wirePair[domain.Amenity]{domain.AmenityAirConditioned, 40},
	)
)

type guestKind uint64

const (
	guestAdult guestKind = 1
	guestChild guestKind = 2
)
