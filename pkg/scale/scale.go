// Package scale converts texture pixel dimensions into physical sizes and
// computes the multiplicative factors needed to bring a mesh footprint to
// that size.
//
// All physical sizes are in meters. The pixel-to-millimeter ratio ("ppmm")
// states how many pixels cover one millimeter, so a 1000 px texture at
// ppmm=1.0 is exactly one meter wide.
package scale

// PhysicalSize converts a pixel dimension to meters using the given
// pixels-per-millimeter ratio.
func PhysicalSize(pixels int, ppmm float64) float64 {
	millimeters := float64(pixels) / ppmm
	return millimeters / 1000.0
}

// ToPixels converts a size in meters back to pixels. The result is
// truncated toward zero.
func ToPixels(meters, ppmm float64) int {
	millimeters := meters * 1000.0
	return int(millimeters * ppmm)
}

// FootprintFor returns the physical width and height in meters covered by
// a texture of the given pixel dimensions.
func FootprintFor(widthPx, heightPx int, ppmm float64) (w, h float64) {
	return PhysicalSize(widthPx, ppmm), PhysicalSize(heightPx, ppmm)
}

// Factors returns the multiplicative scale factors that bring the current
// footprint to the target footprint. When either current dimension is
// zero the identity (1, 1) is returned; Validate reports that condition
// as a blocking error before any apply path is reached.
func Factors(currentW, currentH, targetW, targetH float64) (sx, sy float64) {
	if currentW == 0 || currentH == 0 {
		return 1.0, 1.0
	}
	return targetW / currentW, targetH / currentH
}

// AspectRatio returns width/height, or 1.0 when height is zero.
func AspectRatio(width, height int) float64 {
	if height == 0 {
		return 1.0
	}
	return float64(width) / float64(height)
}

// Density reports how many texture pixels cover one meter of the current
// footprint on each axis.
type Density struct {
	PixelsPerMeterX float64 `json:"pixels_per_meter_x"`
	PixelsPerMeterY float64 `json:"pixels_per_meter_y"`
	Average         float64 `json:"average"`
	Valid           bool    `json:"valid"`
}

// DensityFor computes the texture density over the given footprint.
// A zero footprint yields an invalid density.
func DensityFor(widthPx, heightPx int, footprintW, footprintH float64) Density {
	if footprintW <= 0 || footprintH <= 0 {
		return Density{}
	}
	d := Density{
		PixelsPerMeterX: float64(widthPx) / footprintW,
		PixelsPerMeterY: float64(heightPx) / footprintH,
		Valid:           true,
	}
	d.Average = (d.PixelsPerMeterX + d.PixelsPerMeterY) / 2
	return d
}
