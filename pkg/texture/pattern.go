// Package texture discovers UDIM tile sequences on disk and reads texture
// image metadata.
//
// A sequence is addressed by a pattern: either the Mari-style token form
// ("wall_<UDIM>.png") or a concrete member of the sequence
// ("wall_1001.png"), from which siblings are found by structural matching.
package texture

import (
	"path/filepath"
	"regexp"
	"strings"
)

// UDIMToken is the placeholder replaced by the 4-digit tile number.
const UDIMToken = "<UDIM>"

var (
	fourDigitRe = regexp.MustCompile(`\d{4}`)
	uvStyleRe   = regexp.MustCompile(`u\d+_v\d+`)
)

// LooksTiled reports whether a path plausibly addresses a UDIM sequence:
// it contains the <UDIM> token, a bare 4-digit number, or u#_v# style
// coordinates in its basename.
func LooksTiled(path string) bool {
	if path == "" {
		return false
	}
	base := filepath.Base(path)
	if strings.Contains(base, UDIMToken) {
		return true
	}
	return fourDigitRe.MatchString(base) || uvStyleRe.MatchString(base)
}

// mask replaces every 4-digit run with a fixed placeholder so two
// sequence members compare equal regardless of tile number.
func mask(name string) string {
	return fourDigitRe.ReplaceAllString(name, "XXXX")
}

// similar reports whether two filenames share a structure once tile
// numbers are masked out.
func similar(a, b string) bool {
	return mask(a) == mask(b)
}

// tokenRegexp compiles a basename containing the <UDIM> token into a
// regexp capturing the tile number. Everything outside the token is
// matched literally.
func tokenRegexp(basename string) (*regexp.Regexp, error) {
	parts := strings.Split(basename, UDIMToken)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.Compile("^" + strings.Join(parts, `(\d{4})`) + "$")
}
