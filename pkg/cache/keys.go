package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer produces cache keys so CLI and server agree on key layout.
type Keyer interface {
	// ScanKey keys a directory scan by pattern and directory fingerprint.
	ScanKey(pattern, fingerprint string) string

	// PlanKey keys a computed fit plan by the scan hash and fit options.
	PlanKey(scanHash string, opts PlanKeyOpts) string

	// SheetKey keys a rendered contact sheet by the scan hash and options.
	SheetKey(scanHash string, opts SheetKeyOpts) string
}

// PlanKeyOpts are the fit options that affect plan output.
type PlanKeyOpts struct {
	Mode         string  `json:"mode"`
	Tile         int     `json:"tile"`
	ObjectWidth  float64 `json:"object_width"`
	ObjectHeight float64 `json:"object_height"`
	PixelsPerMM  float64 `json:"pixels_per_mm"`
}

// SheetKeyOpts are the options that affect sheet output.
type SheetKeyOpts struct {
	Format      string `json:"format"`
	ShowMissing bool   `json:"show_missing"`
	Detailed    bool   `json:"detailed"`
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ScanKey generates a key for cached directory scans.
func (k *DefaultKeyer) ScanKey(pattern, fingerprint string) string {
	return hashKey("scan", pattern, fingerprint)
}

// PlanKey generates a key for cached fit plans.
func (k *DefaultKeyer) PlanKey(scanHash string, opts PlanKeyOpts) string {
	return hashKey("plan", scanHash, opts)
}

// SheetKey generates a key for cached contact sheets.
func (k *DefaultKeyer) SheetKey(scanHash string, opts SheetKeyOpts) string {
	return hashKey("sheet", scanHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, e.g.
// per-project caches on a shared server.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ScanKey generates a prefixed scan key.
func (k *ScopedKeyer) ScanKey(pattern, fingerprint string) string {
	return k.prefix + k.inner.ScanKey(pattern, fingerprint)
}

// PlanKey generates a prefixed plan key.
func (k *ScopedKeyer) PlanKey(scanHash string, opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(scanHash, opts)
}

// SheetKey generates a prefixed sheet key.
func (k *ScopedKeyer) SheetKey(scanHash string, opts SheetKeyOpts) string {
	return k.prefix + k.inner.SheetKey(scanHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	// Use full SHA-256 hash (64 hex chars / 256 bits) to prevent collisions
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
