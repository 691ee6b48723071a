package codec

import (
	"fmt"
	"time"

	"travel_query/internal/domain"
	"travel_query/internal/wire"
)

// Hotel payload field numbers, grouped by message.
const (
	hotelVersion wire.Number = 1
	hotelGuests  wire.Number = 2
	hotelSearch  wire.Number = 3
	hotelFilters wire.Number = 5

	guestsEntries  wire.Number = 1
	guestsExplicit wire.Number = 2
	guestKindField wire.Number = 1
	guestAgeField  wire.Number = 2

	searchLocation wire.Number = 1
	searchDates    wire.Number = 2

	locationDetails wire.Number = 2
	locationMarker  wire.Number = 3
	detailsID       wire.Number = 1
	detailsCoords   wire.Number = 2
	detailsName     wire.Number = 3

	datesRange  wire.Number = 2
	datesFlags  wire.Number = 6
	rangeIn     wire.Number = 1
	rangeOut    wire.Number = 2
	rangeNights wire.Number = 3
	dateYear    wire.Number = 1
	dateMonth   wire.Number = 2
	dateDay     wire.Number = 3
	markerFlags wire.Number = 1

	configFilters wire.Number = 1
	configRating  wire.Number = 2
	configPadding wire.Number = 3
	configPrice   wire.Number = 4

	filterStars     wire.Number = 1
	filterAmenities wire.Number = 3
	filterSort      wire.Number = 4
	filterPadding   wire.Number = 6
	filterCurrency  wire.Number = 7

	priceMin   wire.Number = 1
	priceMax   wire.Number = 2
	priceValue wire.Number = 1
)

/********** guest rating **********/

// QuantizeGuestRating maps a minimum rating onto the three levels the
// service understands. Ratings <= 0 mean no filter and return 0.
func QuantizeGuestRating(r float64) uint64 {
	switch {
	case r >= 4.5:
		return 9
	case r >= 4.0:
		return 8
	case r > 0:
		return 7
	}
	return 0
}

// GuestRatingFromWire returns the representative rating of a wire level.
// Encode then decode only preserves the bucket, not the exact value.
func GuestRatingFromWire(v uint64) *float64 {
	if v == 0 {
		return nil
	}
	r := float64(v) / 2
	return &r
}

/********** encode **********/

// EncodeHotel lays out a hotel request as payload bytes. The request is
// expected to have passed Validate; Location travels outside the payload.
func EncodeHotel(r domain.HotelSearchRequest) ([]byte, error) {
	in, err := domain.ParseDate(r.CheckinDate)
	if err != nil {
		return nil, &EncodeError{Field: "checkin_date", Err: err}
	}
	out, err := domain.ParseDate(r.CheckoutDate)
	if err != nil {
		return nil, &EncodeError{Field: "checkout_date", Err: err}
	}
	filters, err := encodeFilterConfig(r)
	if err != nil {
		return nil, err
	}

	// the service only understands version 1
	var b []byte
	b = wire.AppendVarintField(b, hotelVersion, domain.HotelPayloadVersion)
	b = wire.AppendBytesField(b, hotelGuests, encodeGuests(r))
	b = wire.AppendBytesField(b, hotelSearch, encodeSearch(in, out))
	b = wire.AppendBytesField(b, hotelFilters, filters)
	return b, nil
}

func encodeGuests(r domain.HotelSearchRequest) []byte {
	var b []byte
	for i := 0; i < r.Adults; i++ {
		b = wire.AppendBytesField(b, guestsEntries, encodeGuest(guestAdult, 0))
	}
	for _, age := range r.ChildrenAges {
		b = wire.AppendBytesField(b, guestsEntries, encodeGuest(guestChild, age))
	}
	if r.NeedsExplicitGuests() {
		b = wire.AppendVarintField(b, guestsExplicit, 1)
	}
	return b
}

func encodeGuest(kind guestKind, age int) []byte {
	b := wire.AppendVarintField(nil, guestKindField, uint64(kind))
	if age != 0 {
		b = wire.AppendVarintField(b, guestAgeField, uint64(age))
	}
	return b
}

func encodeSearch(in, out time.Time) []byte {
	// Location resolution happens server side from the query string; the
	// payload only carries an empty marker.
	location := wire.AppendBytesField(nil, locationMarker, nil)

	rng := wire.AppendBytesField(nil, rangeIn, encodeDate(in))
	rng = wire.AppendBytesField(rng, rangeOut, encodeDate(out))
	rng = wire.AppendVarintField(rng, rangeNights, uint64(domain.NightsBetween(in, out)))

	dates := wire.AppendBytesField(nil, datesRange, rng)
	dates = wire.AppendBytesField(dates, datesFlags, wire.VarintField(markerFlags, 1))

	b := wire.AppendBytesField(nil, searchLocation, location)
	return wire.AppendBytesField(b, searchDates, dates)
}

func encodeDate(t time.Time) []byte {
	b := wire.AppendVarintField(nil, dateYear, uint64(t.Year()))
	b = wire.AppendVarintField(b, dateMonth, uint64(t.Month()))
	return wire.AppendVarintField(b, dateDay, uint64(t.Day()))
}

func encodeFilterConfig(r domain.HotelSearchRequest) ([]byte, error) {
	var f []byte
	stars := make([]uint64, 0, len(r.HotelStars))
	for _, s := range r.HotelStars {
		stars = append(stars, uint64(s))
	}
	f = wire.AppendPacked(f, filterStars, stars)

	amenities := make([]uint64, 0, len(r.Amenities))
	for _, a := range r.Amenities {
		w, ok := AmenityTable.ToWire(a)
		if !ok {
			return nil, unmapped("amenities", a)
		}
		amenities = append(amenities, w)
	}
	f = wire.AppendPacked(f, filterAmenities, amenities)

	if r.SortOrder != nil {
		w, ok := SortTable.ToWire(*r.SortOrder)
		if !ok {
			return nil, unmapped("sort_order", *r.SortOrder)
		}
		f = wire.AppendVarintField(f, filterSort, w)
	}
	f = wire.AppendBytesField(f, filterPadding, nil)
	if r.Currency != "" {
		f = wire.AppendStringField(f, filterCurrency, r.Currency)
	}

	b := wire.AppendBytesField(nil, configFilters, f)
	if r.MinGuestRating != nil {
		if q := QuantizeGuestRating(*r.MinGuestRating); q != 0 {
			b = wire.AppendVarintField(b, configRating, q)
		}
	}
	b = wire.AppendBytesField(b, configPadding, nil)
	if r.MinPrice != nil || r.MaxPrice != nil {
		var price []byte
		if r.MinPrice != nil {
			price = wire.AppendBytesField(price, priceMin, wire.VarintField(priceValue, uint64(*r.MinPrice)))
		}
		if r.MaxPrice != nil {
			price = wire.AppendBytesField(price, priceMax, wire.VarintField(priceValue, uint64(*r.MaxPrice)))
		}
		b = wire.AppendBytesField(b, configPrice, price)
	}
	return b, nil
}

/********** decode **********/

// DecodeHotel rebuilds a request from payload bytes. Values are taken as
// found: no guests means DefaultAdults, unknown amenities are dropped, a zero
// or unknown sort means relevance and zero prices mean no bound. Location
// details from real search URLs land in Resolved.
func DecodeHotel(b []byte) (domain.HotelSearchRequest, error) {
	var r domain.HotelSearchRequest
	err := wire.Walk(b, "hotel", func(f wire.Field) error {
		switch f.Num {
		case hotelVersion:
			v, err := f.Uint()
			r.Version = int(v)
			return err
		case hotelGuests:
			return f.Message("guests", func(g wire.Field) error {
				switch g.Num {
				case guestsEntries:
					return decodeGuest(g, &r)
				case guestsExplicit:
					v, err := g.Bool()
					r.ExplicitGuests = v
					return err
				}
				return nil
			})
		case hotelSearch:
			return decodeSearch(f, &r)
		case hotelFilters:
			return decodeFilterConfig(f, &r)
		}
		return nil
	})
	if err != nil {
		return domain.HotelSearchRequest{}, err
	}
	if r.Adults == 0 {
		r.Adults = domain.DefaultAdults
	}
	return r, nil
}

func decodeGuest(f wire.Field, r *domain.HotelSearchRequest) error {
	var kind, age uint64
	err := f.Message("entry", func(g wire.Field) error {
		var err error
		switch g.Num {
		case guestKindField:
			kind, err = g.Uint()
		case guestAgeField:
			age, err = g.Uint()
		}
		return err
	})
	if err != nil {
		return err
	}
	if guestKind(kind) == guestAdult {
		r.Adults++
	} else {
		r.ChildrenAges = append(r.ChildrenAges, int(age))
	}
	return nil
}

func decodeSearch(f wire.Field, r *domain.HotelSearchRequest) error {
	return f.Message("search", func(g wire.Field) error {
		switch g.Num {
		case searchLocation:
			return g.Message("location", func(l wire.Field) error {
				if l.Num != locationDetails {
					return nil
				}
				return decodeDetails(l, r)
			})
		case searchDates:
			return g.Message("dates", func(d wire.Field) error {
				if d.Num != datesRange {
					return nil
				}
				return d.Message("range", func(x wire.Field) error {
					var err error
					switch x.Num {
					case rangeIn:
						r.CheckinDate, err = decodeDate(x, "checkin")
					case rangeOut:
						r.CheckoutDate, err = decodeDate(x, "checkout")
					case rangeNights:
						var v int32
						v, err = x.Int32()
						r.Nights = int(v)
					}
					return err
				})
			})
		}
		return nil
	})
}

func decodeDetails(f wire.Field, r *domain.HotelSearchRequest) error {
	loc := &domain.ResolvedLocation{}
	err := f.Message("details", func(g wire.Field) error {
		var err error
		switch g.Num {
		case detailsID:
			loc.ID, err = g.Text()
		case detailsCoords:
			loc.Coordinates, err = g.Text()
		case detailsName:
			loc.DisplayName, err = g.Text()
		}
		return err
	})
	if err != nil {
		return err
	}
	r.Resolved = loc
	return nil
}

func decodeDate(f wire.Field, name string) (string, error) {
	var y, m, d uint64
	err := f.Message(name, func(g wire.Field) error {
		var err error
		switch g.Num {
		case dateYear:
			y, err = g.Uint()
		case dateMonth:
			m, err = g.Uint()
		case dateDay:
			d, err = g.Uint()
		}
		return err
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), nil
}

func decodeFilterConfig(f wire.Field, r *domain.HotelSearchRequest) error {
	return f.Message("filters", func(g wire.Field) error {
		switch g.Num {
		case configFilters:
			return decodeFilterData(g, r)
		case configRating:
			v, err := g.Uint()
			r.MinGuestRating = GuestRatingFromWire(v)
			return err
		case configPrice:
			return g.Message("price", func(p wire.Field) error {
				var (
					v   uint64
					err error
				)
				switch p.Num {
				case priceMin, priceMax:
					v, err = decodePriceValue(p)
				default:
					return nil
				}
				if err != nil || v == 0 {
					return err
				}
				n := int(v)
				if p.Num == priceMin {
					r.MinPrice = &n
				} else {
					r.MaxPrice = &n
				}
				return nil
			})
		}
		return nil
	})
}

func decodePriceValue(f wire.Field) (uint64, error) {
	var v uint64
	err := f.Message("bound", func(g wire.Field) error {
		if g.Num != priceValue {
			return nil
		}
		var err error
		v, err = g.Uint()
		return err
	})
	return v, err
}

func decodeFilterData(f wire.Field, r *domain.HotelSearchRequest) error {
	return f.Message("data", func(g wire.Field) error {
		switch g.Num {
		case filterStars:
			vals, err := g.Varints()
			for _, v := range vals {
				r.HotelStars = append(r.HotelStars, int(v))
			}
			return err
		case filterAmenities:
			vals, err := g.Varints()
			for _, v := range vals {
				if a, ok := AmenityTable.FromWire(v); ok {
					r.Amenities = append(r.Amenities, a)
				}
			}
			return err
		case filterSort:
			v, err := g.Uint()
			if s, ok := SortTable.FromWire(v); ok {
				r.SortOrder = &s
			}
			return err
		case filterCurrency:
			s, err := g.Text()
			r.Currency = s
			return err
		}
		return nil
	})
}
