package domain

import (
	"regexp"
	"time"
)

type PassengerCount struct {
	Type  PassengerType `json:"type"`
	Count int           `json:"count"`
}

// FlightSearchRequest is the input to the flight query codec. Dates are
// kept as ISO strings and parsed only for validation.
type FlightSearchRequest struct {
	Origin            string           `json:"origin"`
	Destination       string           `json:"destination"`
	DepartDate        string           `json:"depart_date"`
	ReturnDate        string           `json:"return_date,omitempty"`
	CabinClass        CabinClass       `json:"cabin_class"`
	TripType          TripType         `json:"trip_type"`
	Passengers        []PassengerCount `json:"passengers"`
	MaxStops          *int             `json:"max_stops,omitempty"`
	PreferredAirlines []string         `json:"preferred_airlines,omitempty"`
}

// Count sums the headcount for t across every entry.
func (r FlightSearchRequest) Count(t PassengerType) int {
	n := 0
	for _, p := range r.Passengers {
		if p.Type == t {
			n += p.Count
		}
	}
	return n
}

var carrierCode = regexp.MustCompile(`^[A-Za-z0-9]{2,3}$`)

// Validate checks every flight rule and reports all failures together.
func (r FlightSearchRequest) Validate() error {
	var vs violations

	if r.Origin == "" {
		vs.add("origin", "origin is required")
	}
	if r.Destination == "" {
		vs.add("destination", "destination is required")
	}

	for i, p := range r.Passengers {
		if !p.Type.Valid() {
			vs.add("passengers", "entry %d has unknown passenger type %d", i, int(p.Type))
		}
		if p.Count < 0 {
			vs.add("passengers", "entry %d has negative count %d", i, p.Count)
		}
	}
	adults, lap := r.Count(PassengerAdult), r.Count(PassengerInfantOnLap)
	if adults < 1 {
		vs.add("passengers", "at least one adult is required")
	}
	if lap > adults {
		vs.add("passengers", "cannot have more infants on lap (%d) than adults (%d)", lap, adults)
	}

	if !r.CabinClass.Valid() {
		vs.add("cabin_class", "unknown cabin class %d", int(r.CabinClass))
	}
	if !r.TripType.Valid() {
		vs.add("trip_type", "unknown trip type %d", int(r.TripType))
	}
	if r.MaxStops != nil && *r.MaxStops < 0 {
		vs.add("max_stops", "max stops must be >= 0")
	}
	for _, code := range r.PreferredAirlines {
		if !carrierCode.MatchString(code) {
			vs.add("preferred_airlines", "invalid carrier code %q", code)
		}
	}

	depart, err := ParseDate(r.DepartDate)
	if err != nil {
		vs.add("depart_date", "invalid date %q, want YYYY-MM-DD", r.DepartDate)
	}
	if r.ReturnDate != "" {
		ret, rerr := ParseDate(r.ReturnDate)
		switch {
		case rerr != nil:
			vs.add("return_date", "invalid date %q, want YYYY-MM-DD", r.ReturnDate)
		case err == nil && r.TripType == TripRoundTrip && ret.Before(depart):
			vs.add("return_date", "return date must be on or after departure date")
		}
	}

	return vs.err()
}

/********** builder **********/

// FlightSearchBuilder assembles a FlightSearchRequest step by step. No rule
// is checked until Build.
type FlightSearchBuilder struct {
	req FlightSearchRequest
}

// NewFlightSearch starts a round trip in economy for one adult.
func NewFlightSearch(origin, destination string, depart time.Time) *FlightSearchBuilder {
	return &FlightSearchBuilder{req: FlightSearchRequest{
		Origin:      origin,
		Destination: destination,
		DepartDate:  FormatDate(depart),
		CabinClass:  CabinEconomy,
		TripType:    TripRoundTrip,
		Passengers:  []PassengerCount{{Type: PassengerAdult, Count: 1}},
	}}
}

func (b *FlightSearchBuilder) CabinClass(c CabinClass) *FlightSearchBuilder {
	b.req.CabinClass = c
	return b
}

func (b *FlightSearchBuilder) TripType(t TripType) *FlightSearchBuilder {
	b.req.TripType = t
	return b
}

// Passengers replaces the passenger list.
func (b *FlightSearchBuilder) Passengers(ps ...PassengerCount) *FlightSearchBuilder {
	b.req.Passengers = append([]PassengerCount(nil), ps...)
	return b
}

func (b *FlightSearchBuilder) ReturnDate(d time.Time) *FlightSearchBuilder {
	b.req.ReturnDate = FormatDate(d)
	return b
}

func (b *FlightSearchBuilder) MaxStops(n int) *FlightSearchBuilder {
	b.req.MaxStops = &n
	return b
}

func (b *FlightSearchBuilder) PreferredAirlines(codes ...string) *FlightSearchBuilder {
	b.req.PreferredAirlines = append([]string(nil), codes...)
	return b
}

// Build validates the accumulated request and returns a copy of it.
func (b *FlightSearchBuilder) Build() (FlightSearchRequest, error) {
	r := b.req
	r.Passengers = append([]PassengerCount(nil), b.req.Passengers...)
	r.PreferredAirlines = append([]string(nil), b.req.PreferredAirlines...)
	if len(r.PreferredAirlines) == 0 {
		r.PreferredAirlines = nil
	}
	if err := r.Validate(); err != nil {
		return FlightSearchRequest{}, err
	}
	return r, nil
}
