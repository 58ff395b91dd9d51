package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one backend.
//
//	staging := cache.NewScopedKeyer(nil, "staging:")
//	prod := cache.NewScopedKeyer(nil, "prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key. A nil
// inner keyer means [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) RosterKey(source string) string {
	return k.prefix + k.inner.RosterKey(source)
}

func (k *ScopedKeyer) LayoutKey(rosterHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(rosterHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
