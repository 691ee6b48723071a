// Package codec translates search requests to and from the binary payloads
// carried by the tfs (flights) and ts (hotels) URL parameters.
package codec

import (
	"travel_query/internal/domain"
	"travel_query/internal/wire"
)

// Flight payload field numbers.
const (
	infoLegs       wire.Number = 3
	infoPassengers wire.Number = 8
	infoSeat       wire.Number = 9
	infoTrip       wire.Number = 19

	legDate     wire.Number = 2
	legMaxStops wire.Number = 5
	legAirlines wire.Number = 6
	legFrom     wire.Number = 13
	legTo       wire.Number = 14

	airportCode wire.Number = 2
)

// FlightLeg is one direction of travel. MaxStops 0 means no limit and is
// never written.
type FlightLeg struct {
	Date     string
	MaxStops int
	Airlines []string
	From     string
	To       string
}

// FlightPayload mirrors the flight message one to one. Passengers holds one
// entry per traveller. A nil Seat or Trip is left off the wire.
type FlightPayload struct {
	Legs       []FlightLeg
	Passengers []domain.PassengerType
	Seat       *domain.CabinClass
	Trip       *domain.TripType
}

func (p FlightPayload) Marshal() ([]byte, error) {
	var b []byte
	for _, leg := range p.Legs {
		b = wire.AppendBytesField(b, infoLegs, leg.marshal())
	}

	pax := make([]uint64, 0, len(p.Passengers))
	for _, t := range p.Passengers {
		w, ok := PassengerTable.ToWire(t)
		if !ok {
			return nil, unmapped("passengers", t)
		}
		pax = append(pax, w)
	}
	b = wire.AppendPacked(b, infoPassengers, pax)

	if p.Seat != nil {
		w, ok := CabinTable.ToWire(*p.Seat)
		if !ok {
			return nil, unmapped("seat", *p.Seat)
		}
		b = wire.AppendVarintField(b, infoSeat, w)
	}
	if p.Trip != nil {
		w, ok := TripTable.ToWire(*p.Trip)
		if !ok {
			return nil, unmapped("trip", *p.Trip)
		}
		b = wire.AppendVarintField(b, infoTrip, w)
	}
	return b, nil
}

func (l FlightLeg) marshal() []byte {
	b := wire.AppendStringField(nil, legDate, l.Date)
	if l.MaxStops != 0 {
		b = wire.AppendVarintField(b, legMaxStops, uint64(int64(l.MaxStops)))
	}
	for _, a := range l.Airlines {
		b = wire.AppendStringField(b, legAirlines, a)
	}
	// Airports stay wrapped in their own message; a bare string is rejected.
	b = wire.AppendBytesField(b, legFrom, wire.AppendStringField(nil, airportCode, l.From))
	b = wire.AppendBytesField(b, legTo, wire.AppendStringField(nil, airportCode, l.To))
	return b
}

// UnmarshalFlightPayload reads a flight message. Unknown passenger values
// are dropped; an unknown seat or trip value fails with wire.ErrInvalidEnum.
func UnmarshalFlightPayload(b []byte) (FlightPayload, error) {
	var p FlightPayload
	err := wire.Walk(b, "info", func(f wire.Field) error {
		switch f.Num {
		case infoLegs:
			leg, err := unmarshalLeg(f)
			if err != nil {
				return err
			}
			p.Legs = append(p.Legs, leg)
		case infoPassengers:
			vals, err := f.Varints()
			if err != nil {
				return err
			}
			for _, v := range vals {
				if t, ok := PassengerTable.FromWire(v); ok {
					p.Passengers = append(p.Passengers, t)
				}
			}
		case infoSeat:
			v, err := f.Uint()
			if err != nil {
				return err
			}
			c, ok := CabinTable.FromWire(v)
			if !ok {
				return wire.InvalidEnum(f, v)
			}
			p.Seat = &c
		case infoTrip:
			v, err := f.Uint()
			if err != nil {
				return err
			}
			t, ok := TripTable.FromWire(v)
			if !ok {
				return wire.InvalidEnum(f, v)
			}
			p.Trip = &t
		}
		return nil
	})
	if err != nil {
		return FlightPayload{}, err
	}
	return p, nil
}

func unmarshalLeg(f wire.Field) (FlightLeg, error) {
	var leg FlightLeg
	err := f.Message("leg", func(g wire.Field) error {
		var err error
		switch g.Num {
		case legDate:
			leg.Date, err = g.Text()
		case legMaxStops:
			var v int32
			v, err = g.Int32()
			leg.MaxStops = int(v)
		case legAirlines:
			var a string
			if a, err = g.Text(); err == nil {
				leg.Airlines = append(leg.Airlines, a)
			}
		case legFrom:
			leg.From, err = unmarshalAirport(g)
		case legTo:
			leg.To, err = unmarshalAirport(g)
		}
		return err
	})
	return leg, err
}

func unmarshalAirport(f wire.Field) (string, error) {
	var code string
	err := f.Message("airport", func(g wire.Field) error {
		if g.Num != airportCode {
			return nil
		}
		var err error
		code, err = g.Text()
		return err
	})
	return code, err
}

/********** request mapping **********/

// EncodeFlight lays out a flight request as payload bytes. The request is
// expected to have passed Validate.
func EncodeFlight(r domain.FlightSearchRequest) ([]byte, error) {
	return FlightPayloadFrom(r).Marshal()
}

// FlightPayloadFrom expands a request into its wire shape: one leg, or two
// for a round trip with a return date, and passengers in canonical order.
func FlightPayloadFrom(r domain.FlightSearchRequest) FlightPayload {
	stops := 0
	if r.MaxStops != nil {
		stops = *r.MaxStops
	}
	airlines := append([]string(nil), r.PreferredAirlines...)

	p := FlightPayload{
		Legs: []FlightLeg{{
			Date:     r.DepartDate,
			MaxStops: stops,
			Airlines: airlines,
			From:     r.Origin,
			To:       r.Destination,
		}},
		Seat: &r.CabinClass,
		Trip: &r.TripType,
	}
	if r.TripType == domain.TripRoundTrip && r.ReturnDate != "" {
		p.Legs = append(p.Legs, FlightLeg{
			Date:     r.ReturnDate,
			MaxStops: stops,
			Airlines: airlines,
			From:     r.Destination,
			To:       r.Origin,
		})
	}
	for _, t := range domain.PassengerOrder {
		for i := 0; i < r.Count(t); i++ {
			p.Passengers = append(p.Passengers, t)
		}
	}
	return p
}

// DecodeFlight rebuilds a request from payload bytes. The result is not
// validated.
func DecodeFlight(b []byte) (domain.FlightSearchRequest, error) {
	p, err := UnmarshalFlightPayload(b)
	if err != nil {
		return domain.FlightSearchRequest{}, err
	}
	return p.Request(), nil
}

// Request maps the payload back onto a request. Route, date, stops and
// airlines come from the first leg; the return date from the second. A
// missing trip type is inferred from the number of legs.
func (p FlightPayload) Request() domain.FlightSearchRequest {
	var r domain.FlightSearchRequest
	if len(p.Legs) > 0 {
		out := p.Legs[0]
		r.Origin, r.Destination, r.DepartDate = out.From, out.To, out.Date
		if out.MaxStops != 0 {
			stops := out.MaxStops
			r.MaxStops = &stops
		}
		if len(out.Airlines) > 0 {
			r.PreferredAirlines = append([]string(nil), out.Airlines...)
		}
	}
	if len(p.Legs) > 1 {
		r.ReturnDate = p.Legs[1].Date
	}

	if p.Seat != nil {
		r.CabinClass = *p.Seat
	}
	switch {
	case p.Trip != nil:
		r.TripType = *p.Trip
	case len(p.Legs) == 1:
		r.TripType = domain.TripOneWay
	default:
		r.TripType = domain.TripRoundTrip
	}

	counts := make(map[domain.PassengerType]int, len(domain.PassengerOrder))
	for _, t := range p.Passengers {
		counts[t]++
	}
	for _, t := range domain.PassengerOrder {
		if n := counts[t]; n > 0 {
			r.Passengers = append(r.Passengers, domain.PassengerCount{Type: t, Count: n})
		}
	}
	return r
}
