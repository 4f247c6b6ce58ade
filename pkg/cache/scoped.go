package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis or Mongo backend without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [NewDefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SketchKey returns the prefixed sketch key.
func (k *ScopedKeyer) SketchKey(docHash string, opts SketchKeyOpts) string {
	return k.prefix + k.inner.SketchKey(docHash, opts)
}

// FontKey returns the prefixed font key.
func (k *ScopedKeyer) FontKey(fileHash string) string {
	return k.prefix + k.inner.FontKey(fileHash)
}
