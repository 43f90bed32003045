package texture

import (
	"image"
	"os"
	"path/filepath"
	"slices"
	"strings"

	// Registered decoders for header reading via image.DecodeConfig.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// decodableExtensions are formats whose headers we can read for pixel
// dimensions.
var decodableExtensions = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp"}

// knownExtensions are formats commonly produced by texturing tools. Files
// in this list but not in decodableExtensions are still listed during
// scans, with zero dimensions.
var knownExtensions = []string{
	".exr", ".hdr", ".tga", ".cin", ".dpx", ".psd", ".jp2", ".webp",
}

// SupportedExtensions returns all recognized texture file extensions,
// sorted, lowercase, with leading dot.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(decodableExtensions)+len(knownExtensions))
	exts = append(exts, decodableExtensions...)
	exts = append(exts, knownExtensions...)
	slices.Sort(exts)
	return exts
}

// IsTextureFile reports whether a path has a recognized texture extension.
func IsTextureFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(decodableExtensions, ext) || slices.Contains(knownExtensions, ext)
}

// Dimensions reads the pixel dimensions from an image file header.
// Returns (0, 0) without error for files whose format has no registered
// decoder; the caller treats unknown dimensions as advisory.
func Dimensions(path string) (width, height int, err error) {
	if !slices.Contains(decodableExtensions, strings.ToLower(filepath.Ext(path))) {
		return 0, 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		// Corrupt or mislabeled file - report unknown dimensions
		// rather than failing the whole scan.
		return 0, 0, nil
	}
	return cfg.Width, cfg.Height, nil
}

// Info describes a texture file on disk.
type Info struct {
	Path      string `json:"path"`
	Filename  string `json:"filename"`
	Exists    bool   `json:"exists"`
	SizeBytes int64  `json:"size_bytes"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
}

// FileInfo gathers existence, size, format and pixel dimensions for a
// texture file. A missing file yields Exists=false with zero values, not
// an error.
func FileInfo(path string) Info {
	info := Info{
		Path:     path,
		Filename: filepath.Base(path),
		Format:   strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
	}

	st, err := os.Stat(path)
	if err != nil {
		return info
	}
	info.Exists = true
	info.SizeBytes = st.Size()

	if w, h, err := Dimensions(path); err == nil {
		info.Width, info.Height = w, h
	}
	return info
}
