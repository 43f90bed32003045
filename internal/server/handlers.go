package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/texscale/texscale/pkg/buildinfo"
	"github.com/texscale/texscale/pkg/cache"
	"github.com/texscale/texscale/pkg/errors"
	"github.com/texscale/texscale/pkg/pipeline"
	"github.com/texscale/texscale/pkg/report"
	"github.com/texscale/texscale/pkg/scale"
	"github.com/texscale/texscale/pkg/udim"
)

// errorResponse is the JSON error body returned by all endpoints.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// scanResponse is the body returned by POST /v1/scan.
type scanResponse struct {
	Tiles    []udim.Tile     `json:"tiles"`
	ScanHash string          `json:"scan_hash"`
	Stats    udim.Statistics `json:"stats"`
	Analysis udim.Report     `json:"analysis"`
	Cached   bool            `json:"cached"`
}

// fitResponse is the body returned by POST /v1/fit.
type fitResponse struct {
	SelectedTile int         `json:"selected_tile"`
	Plan         *scale.Plan `json:"plan"`
	Analysis     udim.Report `json:"analysis"`
	TileCount    int         `json:"tile_count"`
	ReportID     string      `json:"report_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body: %v", err))
		return
	}

	set, hit, err := s.runner.ScanWithCacheInfo(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := scanResponse{
		Tiles:    make([]udim.Tile, 0, len(set)),
		Stats:    udim.Stats(set),
		Analysis: udim.Analyze(set),
		Cached:   hit,
	}
	for _, n := range set.Numbers() {
		resp.Tiles = append(resp.Tiles, set[n])
	}
	if data, err := json.Marshal(resp.Tiles); err == nil {
		resp.ScanHash = cache.Hash(data)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body: %v", err))
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := fitResponse{
		SelectedTile: result.SelectedTile,
		Plan:         result.Plan,
		Analysis:     result.Analysis,
		TileCount:    result.Stats.TileCount,
	}

	if s.store != nil {
		rep := report.New(opts.Pattern, result.Tiles)
		rep.Mode = opts.Mode
		rep.SelectedTile = result.SelectedTile
		rep.Plan = result.Plan
		analysis := result.Analysis
		rep.Analysis = &analysis
		if err := s.store.Save(r.Context(), rep); err != nil {
			s.logger.Warn("failed to persist report", "err", err)
		} else {
			resp.ReportID = rep.ID
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "report storage not configured"))
		return
	}

	reports, err := s.store.List(r.Context(), 100)
	if err != nil {
		writeError(w, err)
		return
	}
	if reports == nil {
		reports = []*report.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "report storage not configured"))
		return
	}

	rep, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps coded errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPattern, errors.ErrCodeInvalidTile,
		errors.ErrCodeInvalidMode, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeNoSelection:
		status = http.StatusUnprocessableEntity
	}

	writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}
