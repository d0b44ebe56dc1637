// Package httpapi exposes the leaderboard over JSON/HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/lookboard/internal/logging"
	"github.com/dmitrijs2005/lookboard/internal/server/leaderboard"
	"github.com/dmitrijs2005/lookboard/internal/server/models"
)

// maxBodyBytes bounds a request body; image_data is base64 and dominates it.
const maxBodyBytes = 16 << 20

// Board is the part of leaderboard.Service the API needs.
type Board interface {
	Submit(ctx context.Context, sub leaderboard.Submission) (bool, string)
	Revoke(ctx context.Context, identity, secret string) bool
	Top(ctx context.Context, n int) []models.Entry
	Qualifies(ctx context.Context, score float64) bool
	Capacity() int
}

// HealthFunc reports whether the backing store is reachable.
type HealthFunc func(ctx context.Context) error

// Entry is the public view of a board entry. The secret never leaves the
// server.
type Entry struct {
	Rank     int     `json:"rank"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Date     string  `json:"date"`
	ImageURL string  `json:"image_url"`
}

type submitRequest struct {
	Name       string   `json:"name"`
	Score      *float64 `json:"score"`
	DeletePass string   `json:"delete_pass"`
	ImageData  string   `json:"image_data"`
}

type deleteRequest struct {
	Name       string `json:"name"`
	DeletePass string `json:"delete_pass"`
}

type result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewMux builds the API handler.
// Routes:
//   - GET  /api/ranking[?n=]
//   - POST /api/ranking
//   - POST /api/ranking/delete
//   - GET  /api/ranking/qualifies?score=
//   - GET  /healthz
func NewMux(board Board, health HealthFunc, logger logging.Logger) http.Handler {
	h := &handler{board: board, health: health, logger: logger.With("module", "httpapi")}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ranking", h.ranking)
	mux.HandleFunc("POST /api/ranking", h.submit)
	mux.HandleFunc("POST /api/ranking/delete", h.revoke)
	mux.HandleFunc("GET /api/ranking/qualifies", h.qualifies)
	mux.HandleFunc("GET /healthz", h.healthz)
	return withLogging(mux, h.logger)
}

type handler struct {
	board  Board
	health HealthFunc
	logger logging.Logger
}

func (h *handler) ranking(w http.ResponseWriter, r *http.Request) {
	top := h.board.Top(r.Context(), h.limit(r))
	out := make([]Entry, len(top))
	for i, e := range top {
		out[i] = toEntry(i+1, e)
	}
	writeJSON(w, http.StatusOK, out)
}

// limit reads the optional n query parameter. Missing, malformed or out of
// range values mean the whole board.
func (h *handler) limit(r *http.Request) int {
	k := h.board.Capacity()
	n, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil || n < 1 || n > k {
		return k
	}
	return n
}

func (h *handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, result{Message: "Malformed request."})
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.Score == nil {
		writeJSON(w, http.StatusBadRequest, result{Message: "Name and score are required."})
		return
	}

	ok, msg := h.board.Submit(r.Context(), leaderboard.Submission{
		Identity:  req.Name,
		Score:     *req.Score,
		Secret:    req.DeletePass,
		ImageData: req.ImageData,
	})
	status := http.StatusOK
	if !ok {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, result{Success: ok, Message: msg})
}

func (h *handler) revoke(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, result{Message: "Malformed request."})
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.DeletePass) == "" {
		writeJSON(w, http.StatusBadRequest, result{Message: "Name and password are required."})
		return
	}

	if !h.board.Revoke(r.Context(), req.Name, req.DeletePass) {
		writeJSON(w, http.StatusBadRequest, result{Message: "Could not delete the entry. Check the name and password."})
		return
	}
	writeJSON(w, http.StatusOK, result{Success: true, Message: "Deleted."})
}

func (h *handler) qualifies(w http.ResponseWriter, r *http.Request) {
	score, err := strconv.ParseFloat(r.URL.Query().Get("score"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, result{Message: "score must be a number"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"rank_in": h.board.Qualifies(r.Context(), score)})
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.logger.Warn(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func toEntry(rank int, e models.Entry) Entry {
	out := Entry{Rank: rank, Name: e.Identity, Score: e.Score, ImageURL: e.ImageRef}
	if !e.CreatedAt.IsZero() {
		out.Date = e.CreatedAt.Format("2006-01-02")
	}
	return out
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler, logger logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
