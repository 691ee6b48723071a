package httpserver_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	httpserver "travel_query/internal/adapters/http_server"
	"travel_query/internal/app"
	"travel_query/internal/domain"
)

type memRepo struct{ records map[string]domain.SearchRecord }

func (m *memRepo) SaveSearch(ctx context.Context, r domain.SearchRecord) error {
	if m.records == nil {
		m.records = map[string]domain.SearchRecord{}
	}
	m.records[r.ID] = r
	return nil
}

func (m *memRepo) GetSearch(ctx context.Context, id string) (domain.SearchRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return domain.SearchRecord{}, domain.ErrNotFound
	}
	return r, nil
}

func (m *memRepo) ListSearches(ctx context.Context, q domain.SearchesQuery) (domain.SearchesPage, error) {
	if q.Cursor != nil {
		return domain.SearchesPage{}, domain.ErrBadCursor
	}
	var out domain.SearchesPage
	for _, r := range m.records {
		if q.Kind != nil && r.Kind != *q.Kind {
			continue
		}
		out.Items = append(out.Items, r)
	}
	sort.Slice(out.Items, func(i, j int) bool { return out.Items[i].ID < out.Items[j].ID })
	return out, nil
}

type nopCache struct{}

func (nopCache) Get(ctx context.Context, key string, dst any) (bool, error)      { return false, nil }
func (nopCache) Set(ctx context.Context, key string, v any, ttlSec int) error { return nil }
func (nopCache) Del(ctx context.Context, key string) error                   { return nil }

const parisTS = "CAEaIAoCGgASGhIUCgcI6g8QARgZEgcI6g8QARgfGAYyAggBKgkKBToDRVVSGgA"

func newTestServer(t *testing.T, rps float64) (*httptest.Server, *memRepo) {
	t.Helper()
	repo := &memRepo{}
	srv := httpserver.New(rps)
	srv.MountHandlers(&httpserver.Handlers{
		Q: app.NewQueryService(repo, nopCache{}, time.Minute),
		L: app.NewLinkService(repo, nopCache{}, app.DefaultLinkConfig()),
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts, repo
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestFlightLink_Created(t *testing.T) {
	ts, repo := newTestServer(t, 0)

	resp := post(t, ts.URL+"/v1/flights/links", `{
		"origin": "SFO", "destination": "JFK", "depart_date": "2025-07-15",
		"cabin_class": "economy", "trip_type": "one_way",
		"passengers": [{"type": "adult", "count": 1}]
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var rec domain.SearchRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Param != "GhoSCjIwMjUtMDctMTVqBRIDU0ZPcgUSA0pGS0IBAUgBmAEC" {
		t.Fatalf("unexpected tfs: %s", rec.Param)
	}
	if _, ok := repo.records[rec.ID]; !ok {
		t.Fatalf("record %s not stored", rec.ID)
	}

	// and it can be read back
	get, err := http.Get(ts.URL + "/v1/searches/" + rec.ID)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer get.Body.Close()
	var v domain.SearchView
	if err := json.NewDecoder(get.Body).Decode(&v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if v.Decoded.Flight == nil || v.Decoded.Flight.Origin != "SFO" {
		t.Fatalf("unexpected view: %+v", v)
	}
	if get.Header.Get("ETag") == "" {
		t.Fatalf("missing ETag")
	}
}

func TestFlightLink_ValidationProblem(t *testing.T) {
	ts, _ := newTestServer(t, 0)

	resp := post(t, ts.URL+"/v1/flights/links", `{
		"origin": "", "destination": "JFK", "depart_date": "2025-07-15",
		"cabin_class": "economy", "trip_type": "one_way", "passengers": []
	}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type = %s", ct)
	}
	var p struct {
		Violations []domain.Violation `json:"violations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	fields := map[string]bool{}
	for _, v := range p.Violations {
		fields[v.Field] = true
	}
	if !fields["origin"] || !fields["passengers"] {
		t.Fatalf("unexpected violations: %+v", p.Violations)
	}
}

func TestFlightLink_UnknownEnumName(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	resp := post(t, ts.URL+"/v1/flights/links", `{"origin":"SFO","destination":"JFK","depart_date":"2025-07-15","cabin_class":"steerage"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestHotelLink_Created(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	resp := post(t, ts.URL+"/v1/hotels/links", `{
		"location": "Paris, France", "adults": 2,
		"checkin_date": "2026-01-25", "checkout_date": "2026-01-31",
		"amenities": ["spa"], "sort_order": "lowest_price"
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var rec domain.SearchRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Kind != domain.KindHotels || !strings.Contains(rec.URL, "q=Paris%2C+France") {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestHotelLink_ChildAgeZero(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	resp := post(t, ts.URL+"/v1/hotels/links", `{
		"location": "Paris, France", "adults": 2, "children_ages": [0],
		"checkin_date": "2026-01-25", "checkout_date": "2026-01-31",
		"version": 7, "nights": 3
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var rec domain.SearchRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	d, err := app.DecodeLink(rec.URL)
	if err != nil {
		t.Fatalf("decode link: %v", err)
	}
	if d.Hotel.ChildrenAges[0] != domain.MinChildAge || d.Hotel.Version != 1 || d.Hotel.Nights != 6 {
		t.Fatalf("unexpected hotel: %+v", d.Hotel)
	}
}

func TestDecodeLink(t *testing.T) {
	ts, repo := newTestServer(t, 0)

	resp := post(t, ts.URL+"/v1/links/decode", `{"url": "https://www.google.com/travel/search?q=Paris&ts=`+parisTS+`"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out struct {
		Record  *domain.SearchRecord `json:"record"`
		Decoded domain.DecodedLink   `json:"decoded"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Record != nil || out.Decoded.Hotel == nil || out.Decoded.Hotel.CheckinDate != "2026-01-25" {
		t.Fatalf("unexpected response: %+v", out)
	}
	if len(repo.records) != 0 {
		t.Fatalf("plain decode must not store anything")
	}

	saved := post(t, ts.URL+"/v1/links/decode", `{"url": "ts=`+parisTS+`", "save": true}`)
	if saved.StatusCode != http.StatusCreated || len(repo.records) != 1 {
		t.Fatalf("status = %d, records = %d", saved.StatusCode, len(repo.records))
	}
}

func TestDecodeLink_BadPayload(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	for _, body := range []string{
		`{"url": ""}`,
		`{"url": "tfs=GhoSCjIw"}`,
		`{"url": "https://www.google.com/travel/search?q=Paris"}`,
	} {
		resp := post(t, ts.URL+"/v1/links/decode", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", body, resp.StatusCode)
		}
	}
}

func TestListSearches(t *testing.T) {
	ts, repo := newTestServer(t, 0)
	repo.records = map[string]domain.SearchRecord{
		"a": {ID: "a", Kind: domain.KindFlights},
		"b": {ID: "b", Kind: domain.KindHotels},
	}

	resp, err := http.Get(ts.URL + "/v1/searches?kind=hotels&limit=10")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var page struct {
		Items []domain.SearchRecord `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "b" {
		t.Fatalf("unexpected page: %+v", page.Items)
	}

	for q, want := range map[string]int{
		"?limit=0":        http.StatusBadRequest,
		"?limit=abc":      http.StatusBadRequest,
		"?kind=trains":    http.StatusBadRequest,
		"?cursor=garbage": http.StatusBadRequest,
	} {
		r, err := http.Get(ts.URL + "/v1/searches" + q)
		if err != nil {
			t.Fatalf("GET %s: %v", q, err)
		}
		_ = r.Body.Close()
		if r.StatusCode != want {
			t.Fatalf("%s: status = %d, want %d", q, r.StatusCode, want)
		}
	}
}

func TestGetSearch_NotFoundAndNotModified(t *testing.T) {
	ts, repo := newTestServer(t, 0)

	r, err := http.Get(ts.URL + "/v1/searches/missing")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = r.Body.Close()
	if r.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", r.StatusCode)
	}

	id := app.SearchID(domain.KindHotels, parisTS)
	repo.records = map[string]domain.SearchRecord{
		id: {ID: id, Kind: domain.KindHotels, Param: parisTS, CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	first, err := http.Get(ts.URL + "/v1/searches/" + id)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = first.Body.Close()
	etag := first.Header.Get("ETag")

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/searches/"+id, nil)
	req.Header.Set("If-None-Match", etag)
	second, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = second.Body.Close()
	if second.StatusCode != http.StatusNotModified {
		t.Fatalf("status = %d", second.StatusCode)
	}
}

func TestRateLimit(t *testing.T) {
	ts, _ := newTestServer(t, 0.5)

	limited := false
	for i := 0; i < 10; i++ {
		r, err := http.Get(ts.URL + "/v1/searches")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		_ = r.Body.Close()
		if r.StatusCode == http.StatusTooManyRequests {
			limited = true
			if r.Header.Get("Retry-After") == "" {
				t.Fatalf("missing Retry-After")
			}
			break
		}
	}
	if !limited {
		t.Fatalf("expected a 429 within burst")
	}

	// forwarding headers do not buy a fresh allowance
	for i := 0; i < 5; i++ {
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/searches", nil)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i))
		r, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		_ = r.Body.Close()
		if r.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("spoofed address %d got status %d", i, r.StatusCode)
		}
	}

	h, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = h.Body.Close()
	if h.StatusCode != http.StatusOK {
		t.Fatalf("healthz must not be limited: %d", h.StatusCode)
	}
}
