package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer builds cache keys. Swapping the Keyer lets deployments namespace or
// version keys without touching the callers.
type Keyer interface {
	// SketchKey identifies the output of one sketch run.
	SketchKey(docHash string, opts SketchKeyOpts) string

	// FontKey identifies the family name read from a font file.
	FontKey(fileHash string) string
}

// SketchKeyOpts holds every option that changes the sketched output.
type SketchKeyOpts struct {
	MaxSegmentLength string   `json:"max_segment_length"`
	Scale            float64  `json:"scale"`
	Wavelength       float64  `json:"wavelength"`
	Randomness       float64  `json:"randomness"`
	Seed             int64    `json:"seed"`
	RNG              string   `json:"rng"`
	Select           []string `json:"select,omitempty"`
	Precision        int      `json:"precision"`
	ReplaceFont      bool     `json:"replace_font"`
	FontFamily       string   `json:"font_family,omitempty"`
	Strict           bool     `json:"strict"`
}

// Hash is the hex SHA-256 of data. Documents and font files are keyed by the
// hash of their content, so renaming a file keeps its entries.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DefaultKeyer produces "sketch:v<version>:<document hash>:<options hash>"
// and "font:v<version>:<file hash>".
type DefaultKeyer struct {
	version int
}

// keyVersion is bumped whenever the output of a sketch changes for the same
// inputs, which invalidates every stored entry.
const keyVersion = 1

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{version: keyVersion}
}

// SketchKey implements Keyer.
func (k *DefaultKeyer) SketchKey(docHash string, opts SketchKeyOpts) string {
	// A struct of plain fields always marshals.
	optsJSON, _ := json.Marshal(opts)
	return fmt.Sprintf("sketch:v%d:%s:%s", k.version, docHash, Hash(optsJSON))
}

// FontKey implements Keyer.
func (k *DefaultKeyer) FontKey(fileHash string) string {
	return fmt.Sprintf("font:v%d:%s", k.version, fileHash)
}

var _ Keyer = (*DefaultKeyer)(nil)
