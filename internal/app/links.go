package app

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"travel_query/internal/domain"
)

var (
	ErrNoPayload  = errors.New("no tfs or ts payload found")
	ErrBadPayload = errors.New("payload is not valid base64")
)

// LinkConfig holds the fixed parts of generated search URLs.
type LinkConfig struct {
	FlightsBaseURL string
	HotelsBaseURL  string
	Lang           string
	Currency       string
}

// flightUI is the opaque tfu value the flights page sends along with tfs.
const flightUI = "EgQIABABIgA"

func DefaultLinkConfig() LinkConfig {
	return LinkConfig{
		FlightsBaseURL: "https://www.google.com/travel/flights/search",
		HotelsBaseURL:  "https://www.google.com/travel/search",
		Lang:           "en",
		Currency:       "USD",
	}
}

// EncodeParam renders payload bytes in the alphabet the kind expects:
// padded standard base64 for flights, unpadded URL-safe base64 for hotels.
func EncodeParam(kind domain.SearchKind, payload []byte) string {
	if kind == domain.KindHotels {
		return base64.RawURLEncoding.EncodeToString(payload)
	}
	return base64.StdEncoding.EncodeToString(payload)
}

// DecodeParam reverses EncodeParam. Missing or extra padding is tolerated.
func DecodeParam(kind domain.SearchKind, param string) ([]byte, error) {
	enc := base64.RawStdEncoding
	if kind == domain.KindHotels {
		enc = base64.RawURLEncoding
	}
	b, err := enc.DecodeString(strings.TrimRight(param, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return b, nil
}

// FlightURL keeps the parameter order the flights page itself uses.
func (c LinkConfig) FlightURL(tfs string) string {
	return fmt.Sprintf("%s?tfs=%s&hl=%s&curr=%s&tfu=%s",
		c.FlightsBaseURL,
		url.QueryEscape(tfs),
		url.QueryEscape(c.Lang),
		url.QueryEscape(c.Currency),
		flightUI,
	)
}

func (c LinkConfig) HotelURL(location, ts string) string {
	return fmt.Sprintf("%s?q=%s&ts=%s", c.HotelsBaseURL, url.QueryEscape(location), url.QueryEscape(ts))
}

// ParsedLink is a payload pulled out of a URL or a bare parameter.
type ParsedLink struct {
	Kind     domain.SearchKind
	Param    string
	Location string // hotels only, from the q parameter
	// Ambiguous marks a bare value whose alphabet fits both kinds; Kind is
	// then only a first guess.
	Ambiguous bool
}

// ParseLink accepts a full search URL, a query string, "tfs=..." / "ts=...",
// or a bare base64 value.
func ParseLink(raw string) (ParsedLink, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ParsedLink{}, ErrNoPayload
	}

	query := raw
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		query = raw[i+1:]
	}
	if strings.Contains(query, "=") && (strings.Contains(query, "tfs=") || strings.Contains(query, "ts=")) {
		vals, err := url.ParseQuery(query)
		if err == nil {
			// a literal '+' in standard base64 arrives as a space
			if v := vals.Get("tfs"); v != "" {
				return ParsedLink{Kind: domain.KindFlights, Param: strings.ReplaceAll(v, " ", "+")}, nil
			}
			if v := vals.Get("ts"); v != "" {
				return ParsedLink{Kind: domain.KindHotels, Param: v, Location: vals.Get("q")}, nil
			}
		}
	}
	if strings.Contains(raw, "://") || strings.HasPrefix(raw, "?") {
		return ParsedLink{}, ErrNoPayload
	}
	kind, sure := guessKind(raw)
	return ParsedLink{Kind: kind, Param: raw, Ambiguous: !sure}, nil
}

// guessKind picks a kind for a bare value from its alphabet and padding.
// Only the standard alphabet is padded, so an unpadded length that is not a
// multiple of 4 is a hotel. The remaining values are guessed as flights and
// reported as unsure.
func guessKind(v string) (domain.SearchKind, bool) {
	switch {
	case strings.ContainsAny(v, "+/"), strings.HasSuffix(v, "="):
		return domain.KindFlights, true
	case strings.ContainsAny(v, "-_"), len(v)%4 != 0:
		return domain.KindHotels, true
	}
	return domain.KindFlights, false
}
