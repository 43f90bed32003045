package texture

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/texscale/texscale/pkg/errors"
	"github.com/texscale/texscale/pkg/udim"
)

// Scan discovers the UDIM tile sequence addressed by pattern.
//
// When the pattern basename contains the <UDIM> token, directory entries
// are matched against it literally with the token standing for any 4-digit
// number. Otherwise the basename is taken as one member of the sequence
// and siblings are found by structural matching (equal names once 4-digit
// runs are masked).
//
// Only tile numbers in [1001, 1100] are accepted. Pixel dimensions are
// read from image headers where a decoder is available; files without one
// are listed with zero dimensions.
func Scan(ctx context.Context, pattern string) (udim.TileSet, error) {
	if err := errors.ValidatePattern(pattern); err != nil {
		return nil, err
	}
	if !LooksTiled(pattern) {
		return nil, errors.New(errors.ErrCodeInvalidPattern, "pattern %q does not address a UDIM sequence", filepath.Base(pattern))
	}

	abs, err := filepath.Abs(pattern)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve pattern path")
	}
	dir := filepath.Dir(abs)
	base := filepath.Base(abs)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "directory does not exist: %s", dir)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read directory %s", dir)
	}

	if strings.Contains(base, UDIMToken) {
		return scanToken(ctx, dir, base, entries)
	}
	return scanNumeric(ctx, dir, base, entries)
}

// scanToken matches directory entries against a <UDIM> token pattern.
func scanToken(ctx context.Context, dir, base string, entries []os.DirEntry) (udim.TileSet, error) {
	re, err := tokenRegexp(base)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPattern, err, "compile pattern %q", base)
	}

	set := udim.TileSet{}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() {
			continue
		}
		m := re.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		if n < udim.Base || n > udim.MaxScanned {
			continue
		}
		set[n] = tileFor(n, filepath.Join(dir, e.Name()))
	}
	return set, nil
}

// scanNumeric finds sequence siblings of a concrete filename by masking
// 4-digit runs and comparing structure. The first run in the valid UDIM
// window names the tile.
func scanNumeric(ctx context.Context, dir, base string, entries []os.DirEntry) (udim.TileSet, error) {
	set := udim.TileSet{}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !similar(base, e.Name()) {
			continue
		}
		for _, m := range fourDigitRe.FindAllString(e.Name(), -1) {
			n, _ := strconv.Atoi(m)
			if n < udim.Base || n > udim.MaxScanned {
				continue
			}
			set[n] = tileFor(n, filepath.Join(dir, e.Name()))
			break // first valid UDIM number names the tile
		}
	}
	return set, nil
}

func tileFor(n int, path string) udim.Tile {
	info := FileInfo(path)
	return udim.Tile{
		Number:    n,
		Width:     info.Width,
		Height:    info.Height,
		Path:      info.Path,
		Filename:  info.Filename,
		Exists:    info.Exists,
		SizeBytes: info.SizeBytes,
	}
}

// Single reads a non-tiled texture as a one-entry scan rooted at Base.
// Used when the fit path receives a plain image instead of a sequence.
func Single(path string) (udim.TileSet, error) {
	if err := errors.ValidatePattern(path); err != nil {
		return nil, err
	}
	info := FileInfo(path)
	if !info.Exists {
		return nil, errors.New(errors.ErrCodeFileNotFound, "texture file does not exist: %s", path)
	}
	return udim.TileSet{udim.Base: {
		Number:    udim.Base,
		Width:     info.Width,
		Height:    info.Height,
		Path:      info.Path,
		Filename:  info.Filename,
		Exists:    true,
		SizeBytes: info.SizeBytes,
	}}, nil
}

// Fingerprint summarizes a sequence directory for cache keying: the
// directory path plus each entry's name, size and mtime. Any change to
// the sequence changes the fingerprint.
func Fingerprint(pattern string) string {
	abs, err := filepath.Abs(pattern)
	if err != nil {
		return pattern
	}
	dir := filepath.Dir(abs)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return dir
	}

	var b strings.Builder
	b.WriteString(dir)
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		b.WriteString("|")
		b.WriteString(e.Name())
		b.WriteString(":")
		b.WriteString(strconv.FormatInt(info.Size(), 10))
		b.WriteString(":")
		b.WriteString(strconv.FormatInt(info.ModTime().UnixNano(), 10))
	}
	return b.String()
}
