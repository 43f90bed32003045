package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/texscale/texscale/pkg/pipeline"
	"github.com/texscale/texscale/pkg/report"
)

func testServer(t *testing.T, store report.Store) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	return New(Config{}, runner, store, logger)
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func testPattern(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "wall_1001.png"), 100, 50)
	writePNG(t, filepath.Join(dir, "wall_1002.png"), 200, 200)
	return filepath.Join(dir, "wall_<UDIM>.png")
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := testServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestScanEndpoint(t *testing.T) {
	s := testServer(t, nil)

	rec := postJSON(t, s.Handler(), "/v1/scan", pipeline.Options{Pattern: testPattern(t)})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp scanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Tiles) != 2 {
		t.Errorf("expected 2 tiles, got %d", len(resp.Tiles))
	}
	if resp.Tiles[0].Number != 1001 {
		t.Errorf("tiles should be ordered, got %d first", resp.Tiles[0].Number)
	}
	if !resp.Analysis.Valid {
		t.Errorf("sequence should be valid: %v", resp.Analysis.Errors)
	}
	if resp.ScanHash == "" {
		t.Error("expected a scan hash")
	}
}

func TestScanEndpointErrors(t *testing.T) {
	s := testServer(t, nil)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"empty pattern", pipeline.Options{}, http.StatusBadRequest, "INVALID_PATTERN"},
		{"missing directory", pipeline.Options{Pattern: "/does/not/exist/wall_<UDIM>.png"}, http.StatusNotFound, "FILE_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, s.Handler(), "/v1/scan", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestScanEndpointRejectsBadJSON(t *testing.T) {
	s := testServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/scan", bytes.NewReader([]byte("{{{")))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestFitEndpoint(t *testing.T) {
	store := report.NewMemoryStore()
	s := testServer(t, store)

	rec := postJSON(t, s.Handler(), "/v1/fit", pipeline.Options{
		Pattern:      testPattern(t),
		Mode:         "largest",
		ObjectWidth:  0.4,
		ObjectHeight: 0.4,
		PixelsPerMM:  1.0,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp fitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.SelectedTile != 1002 {
		t.Errorf("largest mode should select 1002, got %d", resp.SelectedTile)
	}
	if resp.Plan == nil || resp.Plan.ScaleX != 0.5 {
		t.Errorf("unexpected plan: %+v", resp.Plan)
	}
	if resp.ReportID == "" {
		t.Fatal("fit should persist a report when a store is configured")
	}

	// The persisted report is retrievable.
	req := httptest.NewRequest(http.MethodGet, "/v1/reports/"+resp.ReportID, nil)
	getRec := httptest.NewRecorder()
	s.Handler().ServeHTTP(getRec, req)

	if getRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", getRec.Code, getRec.Body.String())
	}
	var rep report.Report
	if err := json.Unmarshal(getRec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if rep.SelectedTile != 1002 {
		t.Errorf("report should carry the selected tile, got %d", rep.SelectedTile)
	}
}

func TestFitEndpointWithoutStore(t *testing.T) {
	s := testServer(t, nil)

	rec := postJSON(t, s.Handler(), "/v1/fit", pipeline.Options{
		Pattern:      testPattern(t),
		ObjectWidth:  0.1,
		ObjectHeight: 0.1,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp fitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ReportID != "" {
		t.Error("fit without a store should not report an ID")
	}
}

func TestReportEndpoints(t *testing.T) {
	store := report.NewMemoryStore()
	s := testServer(t, store)

	// Unknown ID is a 404.
	req := httptest.NewRequest(http.MethodGet, "/v1/reports/nope", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown report, got %d", rec.Code)
	}

	// Empty list is an empty array, not null.
	req = httptest.NewRequest(http.MethodGet, "/v1/reports", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("expected empty array, got %q", body)
	}
}

func TestReportEndpointsWithoutStore(t *testing.T) {
	s := testServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 without a store, got %d", rec.Code)
	}
}
