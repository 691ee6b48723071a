package app

import (
	"travel_query/internal/adapters/observability"
	"travel_query/internal/codec"
	"travel_query/internal/domain"
)

// DecodeLink turns a search URL (or bare payload) back into a request.
// The result is not validated; it reflects what the payload carries.
func DecodeLink(raw string) (domain.DecodedLink, error) {
	p, err := ParseLink(raw)
	if err != nil {
		return domain.DecodedLink{}, err
	}
	d, err := decodeParsed(p)
	if err != nil {
		return domain.DecodedLink{}, err
	}
	if d.Hotel != nil && p.Location != "" {
		d.Hotel.Location = p.Location
	}
	return d, nil
}

// decodeParsed decodes p. An ambiguous bare value is read as a flight
// first and as a hotel when that fails or yields no route.
func decodeParsed(p ParsedLink) (domain.DecodedLink, error) {
	if !p.Ambiguous {
		return decodeParam(p.Kind, p.Param)
	}
	d, ferr := decodeParam(domain.KindFlights, p.Param)
	if ferr == nil && hasRoute(d.Flight) {
		return d, nil
	}
	d, herr := decodeParam(domain.KindHotels, p.Param)
	switch {
	case herr == nil:
		return d, nil
	case ferr != nil:
		return domain.DecodedLink{}, ferr
	}
	return domain.DecodedLink{}, herr
}

func hasRoute(f *domain.FlightSearchRequest) bool {
	return f != nil && f.Origin != "" && f.Destination != "" && f.DepartDate != ""
}

func decodeParam(kind domain.SearchKind, param string) (domain.DecodedLink, error) {
	out := domain.DecodedLink{Kind: kind, Param: param}
	b, err := DecodeParam(kind, param)
	if err != nil {
		observability.ObserveCodec(string(kind), "decode", err)
		return domain.DecodedLink{}, err
	}
	switch kind {
	case domain.KindFlights:
		r, derr := codec.DecodeFlight(b)
		err = derr
		out.Flight = &r
	default:
		r, derr := codec.DecodeHotel(b)
		err = derr
		out.Hotel = &r
	}
	observability.ObserveCodec(string(kind), "decode", err)
	if err != nil {
		return domain.DecodedLink{}, err
	}
	return out, nil
}
