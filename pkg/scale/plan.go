package scale

import (
	"github.com/texscale/texscale/pkg/errors"
)

// Reference names which footprint dimension drives uniform scaling in
// [PreserveAspect].
type Reference string

const (
	RefLarger  Reference = "larger"
	RefSmaller Reference = "smaller"
	RefWidth   Reference = "width"
	RefHeight  Reference = "height"
)

// Request describes one scale computation: the object's current footprint,
// the texture's pixel dimensions and the pixel density.
type Request struct {
	CurrentWidth  float64 `json:"current_width"`  // meters
	CurrentHeight float64 `json:"current_height"` // meters
	TextureWidth  int     `json:"texture_width"`  // pixels
	TextureHeight int     `json:"texture_height"` // pixels
	PixelsPerMM   float64 `json:"pixels_per_mm"`
}

// Plan is the fully computed result of a scale request.
type Plan struct {
	TargetWidthMM  float64 `json:"target_width_mm"`
	TargetHeightMM float64 `json:"target_height_mm"`
	TargetWidthM   float64 `json:"target_width_m"`
	TargetHeightM  float64 `json:"target_height_m"`
	ScaleX         float64 `json:"scale_x"`
	ScaleY         float64 `json:"scale_y"`
	AspectRatio    float64 `json:"aspect_ratio"`
	Density        Density `json:"density"`

	// Warnings carries the advisory findings from validation. They never
	// block the plan.
	Warnings []string `json:"warnings,omitempty"`
}

// Compute validates the request and produces a plan. Blocking validation
// errors return an INVALID_INPUT error carrying the first failure;
// advisory findings are attached to the plan as warnings.
func Compute(req Request) (*Plan, error) {
	v := Validate(req)
	if !v.CanProceed {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s", v.Errors[0])
	}

	targetW, targetH := FootprintFor(req.TextureWidth, req.TextureHeight, req.PixelsPerMM)
	sx, sy := Factors(req.CurrentWidth, req.CurrentHeight, targetW, targetH)

	return &Plan{
		TargetWidthMM:  float64(req.TextureWidth) / req.PixelsPerMM,
		TargetHeightMM: float64(req.TextureHeight) / req.PixelsPerMM,
		TargetWidthM:   targetW,
		TargetHeightM:  targetH,
		ScaleX:         sx,
		ScaleY:         sy,
		AspectRatio:    AspectRatio(req.TextureWidth, req.TextureHeight),
		Density:        DensityFor(req.TextureWidth, req.TextureHeight, req.CurrentWidth, req.CurrentHeight),
		Warnings:       v.Warnings,
	}, nil
}

// PreserveAspect computes the single uniform factor that brings the
// reference dimension of the current footprint to target meters.
func PreserveAspect(currentW, currentH, target float64, ref Reference) (float64, error) {
	var dim float64
	switch ref {
	case RefLarger:
		dim = max(currentW, currentH)
	case RefSmaller:
		dim = min(currentW, currentH)
	case RefWidth:
		dim = currentW
	case RefHeight:
		dim = currentH
	default:
		return 0, errors.New(errors.ErrCodeInvalidInput, "unknown reference dimension %q", ref)
	}
	if dim == 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "reference dimension is zero")
	}
	return target / dim, nil
}
