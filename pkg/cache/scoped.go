package cache

// ScopedKeyer prefixes every key, so several deployments can share one
// Redis or MongoDB backend without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "lab-a:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with a prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) BoundsKey(boardHash string) string {
	return k.prefix + k.inner.BoundsKey(boardHash)
}

func (k *ScopedKeyer) ImageKey(boardHash string, opts ImageKeyOpts) string {
	return k.prefix + k.inner.ImageKey(boardHash, opts)
}
