// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"travel_query/internal/app"
	"travel_query/internal/codec"
	"travel_query/internal/domain"
	"travel_query/internal/wire"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

type Handlers struct {
	Q *app.QueryService
	L *app.LinkService
}

type problem struct {
	Type       string             `json:"type"`
	Title      string             `json:"title"`
	Status     int                `json:"status"`
	Detail     string             `json:"detail,omitempty"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

type decodeRequest struct {
	URL  string `json:"url"`
	Save bool   `json:"save"`
}

type decodeResponse struct {
	Record  *domain.SearchRecord `json:"record,omitempty"`
	Decoded domain.DecodedLink   `json:"decoded"`
}

type searchesResponse struct {
	Items      []domain.SearchRecord `json:"items"`
	NextCursor *string               `json:"next_cursor,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/flights/links", h.flightLink)
	s.mux.Post("/v1/hotels/links", h.hotelLink)
	s.mux.Post("/v1/links/decode", h.decodeLink)
	s.mux.Get("/v1/searches", h.listSearches)
	s.mux.Get("/v1/searches/{id}", h.getSearch)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	var (
		ve *domain.ValidationError
		de *wire.DecodeError
		ee *codec.EncodeError
	)
	switch {
	case errors.As(err, &ve):
		writeProblemBody(w, problem{
			Type: "about:blank", Title: "Invalid Search Request",
			Status: http.StatusUnprocessableEntity, Violations: ve.Violations,
		})
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "search not found")
	case errors.Is(err, domain.ErrBadCursor):
		writeProblem(w, http.StatusBadRequest, "Invalid cursor", err.Error())
	case errors.Is(err, app.ErrNoPayload), errors.Is(err, app.ErrBadPayload), errors.As(err, &de):
		writeProblem(w, http.StatusBadRequest, "Undecodable Link", err.Error())
	case errors.As(err, &ee):
		writeProblem(w, http.StatusBadRequest, "Unencodable Request", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Malformed JSON", err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

func (h *Handlers) flightLink(w http.ResponseWriter, r *http.Request) {
	var req domain.FlightSearchRequest
	if !readJSON(w, r, &req) {
		return
	}
	rec, err := h.L.FlightLink(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handlers) hotelLink(w http.ResponseWriter, r *http.Request) {
	var req domain.HotelSearchRequest
	if !readJSON(w, r, &req) {
		return
	}
	rec, err := h.L.HotelLink(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handlers) decodeLink(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if !readJSON(w, r, &req) {
		return
	}
	if !req.Save {
		d, err := app.DecodeLink(req.URL)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, decodeResponse{Decoded: d})
		return
	}
	rec, d, err := h.L.ImportLink(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, decodeResponse{Record: &rec, Decoded: d})
}

func (h *Handlers) getSearch(w http.ResponseWriter, r *http.Request) {
	v, err := h.Q.GetSearch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Last-Modified", v.Record.CreatedAt.UTC().Format(http.TimeFormat))
	writeCached(w, r, v)
}

func (h *Handlers) listSearches(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	var q domain.SearchesQuery

	if ls := qs.Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > app.MaxPageSize {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and "+strconv.Itoa(app.MaxPageSize))
			return
		}
		q.Limit = l
	}
	if ks := qs.Get("kind"); ks != "" {
		k := domain.SearchKind(ks)
		if k.Param() == "" {
			writeProblem(w, http.StatusBadRequest, "Invalid kind", "kind must be flights or hotels")
			return
		}
		q.Kind = &k
	}
	if c := qs.Get("cursor"); c != "" {
		q.Cursor = &c
	}

	// Newest first; aligns with DB index on (kind, created_at, id)
	out, err := h.Q.ListSearches(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := searchesResponse{Items: out.Items, NextCursor: out.NextCursor}
	if resp.Items == nil {
		resp.Items = []domain.SearchRecord{}
	}
	writeCached(w, r, resp)
}
