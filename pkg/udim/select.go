package udim

import (
	"github.com/texscale/texscale/pkg/errors"
)

// Mode controls how a reference tile is chosen from a set.
type Mode string

const (
	// ModeFirst picks the lowest tile number present.
	ModeFirst Mode = "first"
	// ModeLargest picks the tile with the highest total pixel count.
	ModeLargest Mode = "largest"
	// ModeSmallest picks the tile with the lowest total pixel count.
	ModeSmallest Mode = "smallest"
	// ModeManual means the caller names the tile directly; Select is not
	// consulted in this mode.
	ModeManual Mode = "manual"
)

// ParseMode validates a mode string. ModeManual is accepted; callers that
// cannot honor it should check for it explicitly.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFirst, ModeLargest, ModeSmallest, ModeManual:
		return Mode(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidMode, "unknown selection mode %q (want first, largest, smallest or manual)", s)
}

// Select picks a reference tile from the set according to mode.
// Resolution ties are broken by tile number ascending. Unrecognized modes
// fall back to first. Returns a NO_SELECTION error for an empty set.
func Select(s TileSet, mode Mode) (int, error) {
	if len(s) == 0 {
		return 0, errors.New(errors.ErrCodeNoSelection, "no tiles to select from")
	}

	switch mode {
	case ModeLargest:
		return s.ByResolution(true)[0], nil
	case ModeSmallest:
		return s.ByResolution(false)[0], nil
	default:
		return s.Numbers()[0], nil
	}
}

// AtIndex returns the tile number at index in number-sorted order, or a
// NO_SELECTION error when the index is out of range. Used to map UI list
// positions back to tile numbers.
func AtIndex(s TileSet, index int) (int, error) {
	nums := s.Numbers()
	if index < 0 || index >= len(nums) {
		return 0, errors.New(errors.ErrCodeNoSelection, "tile index %d out of range (have %d tiles)", index, len(nums))
	}
	return nums[index], nil
}
