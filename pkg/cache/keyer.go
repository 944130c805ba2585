package cache

// Keyer derives cache keys.
type Keyer interface {
	// PreviewKey is the key of a project's schedule preview.
	PreviewKey(projectID string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PreviewKey returns "preview:<project>".
func (DefaultKeyer) PreviewKey(projectID string) string {
	return "preview:" + projectID
}

// ScopedKeyer wraps a Keyer with a prefix, so several deployments can share
// one Redis server without seeing each other's entries.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "critpath:staging:")
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

// PreviewKey generates a prefixed preview key.
func (k *ScopedKeyer) PreviewKey(projectID string) string {
	return k.prefix + k.inner.PreviewKey(projectID)
}
