package udim

import (
	"slices"
	"sort"
)

// Tile describes a single discovered UDIM texture file.
type Tile struct {
	Number    int    `json:"number"`               // UDIM tile number (1001+)
	Width     int    `json:"width"`                // pixel width (0 when undecodable)
	Height    int    `json:"height"`               // pixel height (0 when undecodable)
	Path      string `json:"path,omitempty"`       // absolute path to the texture file
	Filename  string `json:"filename,omitempty"`   // basename of the texture file
	Exists    bool   `json:"exists"`               // whether the file is present on disk
	SizeBytes int64  `json:"size_bytes,omitempty"` // file size on disk
}

// Pixels returns the tile's total pixel count.
func (t Tile) Pixels() int64 {
	return int64(t.Width) * int64(t.Height)
}

// TileSet maps UDIM tile numbers to discovered tiles.
// Keys are unique and unordered; use [TileSet.Numbers] for sorted access.
type TileSet map[int]Tile

// Numbers returns the tile numbers in ascending order.
func (s TileSet) Numbers() []int {
	nums := make([]int, 0, len(s))
	for n := range s {
		nums = append(nums, n)
	}
	slices.Sort(nums)
	return nums
}

// Range returns the minimum and maximum tile numbers present.
// An empty set reports (Base, Base).
func (s TileSet) Range() (min, max int) {
	if len(s) == 0 {
		return Base, Base
	}
	first := true
	for n := range s {
		if first {
			min, max = n, n
			first = false
			continue
		}
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	return min, max
}

// Gaps returns the tile numbers missing between the observed minimum and
// maximum, sorted ascending. Sets with fewer than two tiles have no gaps.
func (s TileSet) Gaps() []int {
	if len(s) == 0 {
		return nil
	}
	min, max := s.Range()
	var gaps []int
	for n := min; n <= max; n++ {
		if _, ok := s[n]; !ok {
			gaps = append(gaps, n)
		}
	}
	return gaps
}

// ByResolution returns tile numbers ordered by total pixel count.
// Ties are broken by tile number ascending (the sort is stable over the
// number-sorted input).
func (s TileSet) ByResolution(descending bool) []int {
	nums := s.Numbers()
	sort.SliceStable(nums, func(i, j int) bool {
		pi, pj := s[nums[i]].Pixels(), s[nums[j]].Pixels()
		if descending {
			return pi > pj
		}
		return pi < pj
	})
	return nums
}

// Missing returns the tiles flagged as not present on disk, sorted by number.
func (s TileSet) Missing() []int {
	var missing []int
	for n, t := range s {
		if !t.Exists {
			missing = append(missing, n)
		}
	}
	slices.Sort(missing)
	return missing
}

// Statistics summarizes a tile set for reporting. The width and height
// extremes are per-axis, so MinWidth and MinHeight can come from
// different tiles.
type Statistics struct {
	Count         int     `json:"count"`
	TotalPixels   int64   `json:"total_pixels"`
	MinWidth      int     `json:"min_width"`
	MinHeight     int     `json:"min_height"`
	MaxWidth      int     `json:"max_width"`
	MaxHeight     int     `json:"max_height"`
	AvgWidth      int     `json:"avg_width"`
	AvgHeight     int     `json:"avg_height"`
	MinTile       int     `json:"min_tile"`
	MaxTile       int     `json:"max_tile"`
	Gaps          []int   `json:"gaps,omitempty"`
	TotalFileSize int64   `json:"total_file_size"`
	AvgFileSize   int64   `json:"avg_file_size"`
	Resolutions   [][2]int `json:"-"` // distinct (width, height) pairs, unordered
}

// Stats computes summary statistics over the set.
func Stats(s TileSet) Statistics {
	st := Statistics{MinTile: Base, MaxTile: Base}
	if len(s) == 0 {
		return st
	}

	st.Count = len(s)
	st.MinTile, st.MaxTile = s.Range()
	st.Gaps = s.Gaps()

	seen := map[[2]int]bool{}
	var sumW, sumH int
	var sizes int64
	var sized int64
	first := true
	for _, t := range s {
		st.TotalPixels += t.Pixels()
		sumW += t.Width
		sumH += t.Height
		if t.SizeBytes > 0 {
			sizes += t.SizeBytes
			sized++
		}
		res := [2]int{t.Width, t.Height}
		if !seen[res] {
			seen[res] = true
			st.Resolutions = append(st.Resolutions, res)
		}
		if first {
			st.MinWidth, st.MinHeight = t.Width, t.Height
			st.MaxWidth, st.MaxHeight = t.Width, t.Height
			first = false
			continue
		}
		st.MinWidth = min(st.MinWidth, t.Width)
		st.MinHeight = min(st.MinHeight, t.Height)
		st.MaxWidth = max(st.MaxWidth, t.Width)
		st.MaxHeight = max(st.MaxHeight, t.Height)
	}
	st.AvgWidth = sumW / st.Count
	st.AvgHeight = sumH / st.Count
	st.TotalFileSize = sizes
	if sized > 0 {
		st.AvgFileSize = sizes / sized
	}
	return st
}
