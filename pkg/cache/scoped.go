package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis instance.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "devmap:staging:")
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
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RanksKey generates a prefixed key for ranking tables.
func (k *ScopedKeyer) RanksKey(dataHash string, opts RanksKeyOpts) string {
	return k.prefix + k.inner.RanksKey(dataHash, opts)
}

// LayoutKey generates a prefixed key for settled layouts.
func (k *ScopedKeyer) LayoutKey(dataHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(dataHash, opts)
}

// TrendKey generates a prefixed key for trend lines.
func (k *ScopedKeyer) TrendKey(dataHash string, opts TrendKeyOpts) string {
	return k.prefix + k.inner.TrendKey(dataHash, opts)
}
