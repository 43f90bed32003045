// Package udim implements UDIM tile numbering arithmetic and tile-set
// operations.
//
// UDIM addresses texture tiles on a 10-wide grid with 4-digit numbers
// starting at 1001. A tile number n maps to grid coordinates via
//
//	u = (n - 1001) % 10
//	v = (n - 1001) / 10
//
// so 1001 is (0,0), 1002 is (1,0) and 1011 is (0,1). The U axis wraps at
// 10; V is unbounded upward.
//
// The package is pure arithmetic - file discovery lives in
// [github.com/texscale/texscale/pkg/texture].
package udim

import (
	"github.com/texscale/texscale/pkg/errors"
)

// Base is the first valid UDIM tile number, addressing grid cell (0,0).
const Base = 1001

// MaxScanned is the highest tile number considered during directory
// scanning. Matches the 100-tile window (10x10 grid) used by most DCC
// applications.
const MaxScanned = 1100

// Decompose converts a UDIM tile number into (u, v) grid coordinates.
// It returns an INVALID_TILE error when n < 1001.
func Decompose(n int) (u, v int, err error) {
	if n < Base {
		return 0, 0, errors.New(errors.ErrCodeInvalidTile, "invalid UDIM number %d: must be >= %d", n, Base)
	}
	offset := n - Base
	return offset % 10, offset / 10, nil
}

// Compose builds a UDIM tile number from (u, v) grid coordinates.
// u must be in [0,9] and v must be non-negative.
func Compose(u, v int) (int, error) {
	if u < 0 || u > 9 {
		return 0, errors.New(errors.ErrCodeInvalidTile, "U coordinate must be 0-9, got %d", u)
	}
	if v < 0 {
		return 0, errors.New(errors.ErrCodeInvalidTile, "V coordinate must be >= 0, got %d", v)
	}
	return Base + u + v*10, nil
}

// Sequence generates count consecutive tile numbers in raster order
// starting at start. The walk wraps U at 10 and advances V.
func Sequence(start, count int) ([]int, error) {
	u, v, err := Decompose(start)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "sequence count must be >= 0, got %d", count)
	}
	seq := make([]int, 0, count)
	for i := 0; i < count; i++ {
		n, err := Compose((u+i)%10, v+(u+i)/10)
		if err != nil {
			return nil, err
		}
		seq = append(seq, n)
	}
	return seq, nil
}
