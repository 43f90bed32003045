package scale

import "fmt"

// Validation thresholds. Findings outside these bounds are advisory, not
// blocking.
const (
	maxTextureSide = 16384
	maxRatio       = 100.0
	minRatio       = 0.01
	maxFactor      = 1000.0
	minFactor      = 0.001
)

// Validation is the outcome of checking a scale request. Errors block the
// computation; warnings do not.
type Validation struct {
	Valid      bool     `json:"valid"`
	CanProceed bool     `json:"can_proceed"`
	Errors     []string `json:"errors,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Validate checks a scale request before computation.
//
// Blocking errors: non-positive texture dimensions, non-positive ratio,
// zero current footprint. Advisory warnings: very large textures, extreme
// pixel densities, and resulting scale factors outside [0.001, 1000].
func Validate(req Request) Validation {
	var v Validation

	if req.TextureWidth <= 0 || req.TextureHeight <= 0 {
		v.Errors = append(v.Errors, "invalid texture dimensions")
		return v
	}

	if req.TextureWidth > maxTextureSide || req.TextureHeight > maxTextureSide {
		v.Warnings = append(v.Warnings, "very large texture dimensions detected")
	}

	if req.PixelsPerMM <= 0 {
		v.Errors = append(v.Errors, "invalid pixel to millimeter ratio")
		return v
	}

	if req.PixelsPerMM > maxRatio {
		v.Warnings = append(v.Warnings, "very high pixel density - object will be very small")
	}
	if req.PixelsPerMM < minRatio {
		v.Warnings = append(v.Warnings, "very low pixel density - object will be very large")
	}

	if req.CurrentWidth == 0 || req.CurrentHeight == 0 {
		v.Errors = append(v.Errors, "object has zero dimensions")
		return v
	}

	targetW, targetH := FootprintFor(req.TextureWidth, req.TextureHeight, req.PixelsPerMM)
	sx, sy := Factors(req.CurrentWidth, req.CurrentHeight, targetW, targetH)

	if sx > maxFactor || sy > maxFactor {
		v.Warnings = append(v.Warnings, fmt.Sprintf("very large scale factors (%.3g, %.3g) - object will become huge", sx, sy))
	}
	if sx < minFactor || sy < minFactor {
		v.Warnings = append(v.Warnings, fmt.Sprintf("very small scale factors (%.3g, %.3g) - object will become tiny", sx, sy))
	}

	v.Valid = true
	v.CanProceed = true
	return v
}
