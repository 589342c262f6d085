package server

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/runnerr0/backstory/internal/history"
	"github.com/runnerr0/backstory/internal/storage"
)

const maxWeeks = 52

// PreviewResponse represents the response for /api/preview.
type PreviewResponse struct {
	Seed        int64                  `json:"seed"`
	Weeks       int                    `json:"weeks"`
	TotalVisits int                    `json:"total_visits"`
	Visits      []storage.PreviewEntry `json:"visits"`
}

// genParams are the query parameters shared by both endpoints.
type genParams struct {
	weeks int
	seed  int64
}

func (s *Server) parseGenParams(r *http.Request) (genParams, error) {
	p := genParams{
		weeks: s.cfg.Generator.DefaultWeeks,
		seed:  time.Now().UnixNano(),
	}

	if raw := r.URL.Query().Get("weeks"); raw != "" {
		weeks, err := strconv.Atoi(raw)
		if err != nil || weeks < 1 || weeks > maxWeeks {
			return p, fmt.Errorf("weeks must be an integer in [1, %d]", maxWeeks)
		}
		p.weeks = weeks
	}

	if raw := r.URL.Query().Get("seed"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return p, fmt.Errorf("seed must be a 64-bit integer")
		}
		p.seed = seed
	}

	return p, nil
}

// runGeneration opens (and migrates) the target database, generates the
// window reaching back p.weeks from now, and returns the open handle and
// the number of visits written. The caller closes the handle.
func (s *Server) runGeneration(ctx context.Context, dbPath string, p genParams) (*sql.DB, int, error) {
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, 0, fmt.Errorf("open target: %w", err)
	}

	rng := rand.New(rand.NewSource(p.seed))
	writer := storage.NewHistoryWriter(db, rng)
	writer.KeywordID = s.cfg.Generator.KeywordID

	gen := history.NewGenerator(rng, s.lib, writer)
	start, end := history.Window(rng, time.Now().In(s.cfg.Location()), p.weeks)

	visits, err := gen.Run(ctx, start, end)
	if err != nil {
		db.Close()
		return nil, 0, fmt.Errorf("generate: %w", err)
	}
	return db, visits, nil
}

// handleIndex returns the service banner.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"service":   "backstory",
		"endpoints": []string{"/api/generate", "/api/preview"},
	})
}

// handleGenerate builds a complete History file and streams it back as a
// download. The file is assembled in a per-request temp path and removed
// once the response is written.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	p, err := s.parseGenParams(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	dbPath := filepath.Join(os.TempDir(), "backstory-"+uuid.NewString()+".db")
	defer os.Remove(dbPath)

	db, visits, err := s.runGeneration(r.Context(), dbPath, p)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Close before reading so every page is flushed to the file.
	if err := db.Close(); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "closing target: "+err.Error())
		return
	}

	data, err := os.ReadFile(dbPath)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "reading target: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename=History`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Seed", strconv.FormatInt(p.seed, 10))
	w.Header().Set("X-Weeks", strconv.Itoa(p.weeks))
	w.Header().Set("X-Visits", strconv.Itoa(visits))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handlePreview generates into an in-memory database and returns the
// most recent visits as JSON.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	p, err := s.parseGenParams(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
	}
	if limit > s.cfg.Server.MaxPreviewLimit {
		limit = s.cfg.Server.MaxPreviewLimit
	}

	db, visits, err := s.runGeneration(r.Context(), ":memory:", p)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer db.Close()

	entries, err := storage.ReadRecentVisits(r.Context(), db, limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "reading preview: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, PreviewResponse{
		Seed:        p.seed,
		Weeks:       p.weeks,
		TotalVisits: visits,
		Visits:      entries,
	})
}
