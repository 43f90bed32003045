package udim

import "fmt"

// Thresholds for sequence analysis.
const (
	// largeTileSide flags tiles whose width or height exceeds this.
	largeTileSide = 8192
	// atlasSuggestionCount is the sequence size above which texture
	// atlasing is suggested.
	atlasSuggestionCount = 20
)

// Report carries the outcome of a sequence analysis. Errors make the
// sequence invalid; warnings and suggestions are advisory.
type Report struct {
	Valid       bool     `json:"valid"`
	Errors      []string `json:"errors,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Analyze inspects a tile set for sequence problems: gaps, inconsistent
// resolutions, oversized tiles and files missing on disk. An empty set is
// invalid.
func Analyze(s TileSet) Report {
	r := Report{Valid: true}

	if len(s) == 0 {
		r.Valid = false
		r.Errors = append(r.Errors, "no UDIM files found")
		return r
	}

	if gaps := s.Gaps(); len(gaps) > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("missing UDIM tiles: %v", gaps))
		r.Suggestions = append(r.Suggestions, "consider filling gaps or using non-sequential UDIMs")
	}

	st := Stats(s)
	if len(st.Resolutions) > 1 {
		r.Warnings = append(r.Warnings, "inconsistent resolutions across UDIM tiles")
		r.Suggestions = append(r.Suggestions, "consider standardizing all tiles to the same resolution")
	}

	for _, n := range s.Numbers() {
		t := s[n]
		if t.Width > largeTileSide || t.Height > largeTileSide {
			r.Warnings = append(r.Warnings, fmt.Sprintf("UDIM %d has very high resolution: %dx%d", n, t.Width, t.Height))
			r.Suggestions = append(r.Suggestions, "consider using lower resolution for better performance")
		}
	}

	if missing := s.Missing(); len(missing) > 0 {
		r.Errors = append(r.Errors, fmt.Sprintf("UDIM files missing on disk: %v", missing))
		r.Valid = false
	}

	if len(s) > atlasSuggestionCount {
		r.Suggestions = append(r.Suggestions, "large UDIM sequence - consider texture atlasing")
	}

	if len(s) > 1 {
		largest := s.ByResolution(true)[0]
		r.Suggestions = append(r.Suggestions, fmt.Sprintf("UDIM %d has highest resolution - good for detail scaling", largest))
	}

	return r
}
