//go:build integration || !unit

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	httpserver "travel_query/internal/adapters/http_server"
	redisad "travel_query/internal/adapters/redis"
	"travel_query/internal/app"
	"travel_query/internal/domain"
	mysqlrepo "travel_query/internal/storage/mysql"
	"travel_query/internal/storage/mysql/mysqltest"
)

// ---------- helpers ----------
func postJSON(t *testing.T, url string, body any, dst any) int {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	res, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer res.Body.Close()
	if dst != nil && res.StatusCode < 300 {
		if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return res.StatusCode
}

func getJSON(t *testing.T, url string, dst any) int {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if dst != nil && res.StatusCode == http.StatusOK {
		if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return res.StatusCode
}

// ---------- the test ----------
func TestHTTP_EndToEnd_Links(t *testing.T) {
	db := mysqltest.Start(t)

	mr := miniredis.RunT(t)
	cache := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "e2e:")
	repo := mysqlrepo.New(db)

	srv := httpserver.New(0)
	srv.MountHandlers(&httpserver.Handlers{
		Q: app.NewQueryService(repo, cache, time.Minute),
		L: app.NewLinkService(repo, cache, app.DefaultLinkConfig()),
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// build one link of each kind
	var flight domain.SearchRecord
	if code := postJSON(t, ts.URL+"/v1/flights/links", map[string]any{
		"origin": "SFO", "destination": "JFK",
		"depart_date": "2025-07-15", "return_date": "2025-07-22",
		"cabin_class": "premium_economy", "trip_type": "round_trip",
		"passengers": []map[string]any{{"type": "adult", "count": 2}, {"type": "infant_on_lap", "count": 1}},
		"max_stops": 1, "preferred_airlines": []string{"UA"},
	}, &flight); code != http.StatusCreated {
		t.Fatalf("flight link status %d", code)
	}
	if flight.Param != "GiASCjIwMjUtMDctMTUoATICVUFqBRIDU0ZPcgUSA0pGSxogEgoyMDI1LTA3LTIyKAEyAlVBagUSA0pGS3IFEgNTRk9CAwEBBEgCmAEB" {
		t.Fatalf("unexpected tfs: %s", flight.Param)
	}

	var hotel domain.SearchRecord
	if code := postJSON(t, ts.URL+"/v1/hotels/links", map[string]any{
		"location": "Rome, Italy", "adults": 2, "children_ages": []int{7},
		"checkin_date": "2026-03-10", "checkout_date": "2026-03-14",
		"currency": "USD", "min_guest_rating": 4.2, "hotel_stars": []int{4, 5},
		"amenities": []string{"spa", "pool"}, "min_price": 100, "max_price": 300,
		"sort_order": "lowest_price",
	}, &hotel); code != http.StatusCreated {
		t.Fatalf("hotel link status %d", code)
	}
	if hotel.Param != "CAESEAoCCAEKAggBCgQIAhAHEAEaIAoCGgASGhIUCgcI6g8QAxgKEgcI6g8QAxgOGAQyAggBKiIKEQoCBAUaAgoGIAMyADoDVVNEEAgaACIJCgIIZBIDCKwC" {
		t.Fatalf("unexpected ts: %s", hotel.Param)
	}

	// stored and decoded again; second read is served from redis
	var view domain.SearchView
	if code := getJSON(t, ts.URL+"/v1/searches/"+hotel.ID, &view); code != http.StatusOK {
		t.Fatalf("get search status %d", code)
	}
	if view.Decoded.Hotel == nil || view.Decoded.Hotel.Adults != 2 || view.Decoded.Hotel.Nights != 4 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if !mr.Exists("e2e:search:" + hotel.ID) {
		t.Fatalf("view was not cached")
	}

	// history, newest first; kind filter
	var page struct {
		Items []domain.SearchRecord `json:"items"`
	}
	if code := getJSON(t, ts.URL+"/v1/searches?kind=flights", &page); code != http.StatusOK {
		t.Fatalf("list status %d", code)
	}
	if len(page.Items) != 1 || page.Items[0].ID != flight.ID {
		t.Fatalf("unexpected flights page: %+v", page.Items)
	}

	// importing an existing link stores it once
	var imported struct {
		Record *domain.SearchRecord `json:"record"`
	}
	if code := postJSON(t, ts.URL+"/v1/links/decode", map[string]any{"url": flight.URL, "save": true}, &imported); code != http.StatusCreated {
		t.Fatalf("import status %d", code)
	}
	if imported.Record == nil || imported.Record.ID != flight.ID {
		t.Fatalf("import should map to the same record: %+v", imported.Record)
	}
	if code := getJSON(t, ts.URL+"/v1/searches?limit=10", &page); code != http.StatusOK || len(page.Items) != 2 {
		t.Fatalf("expected 2 records, got %d (status %d)", len(page.Items), code)
	}

	if code := getJSON(t, ts.URL+"/v1/searches/doesnotexist", nil); code != http.StatusNotFound {
		t.Fatalf("missing search status %d", code)
	}
}
