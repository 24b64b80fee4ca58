package pulse

import "context"

// Adapter fetches raw analytics from one external platform and returns them
// in platform-neutral form. Adapters never retry.
type Adapter interface {
	// Platform is the platform this adapter serves.
	Platform() Platform

	// Fetch reads statistics and recent content for account using credential
	// as the upstream bearer. An empty credential fails before any request.
	Fetch(ctx context.Context, account *Account, credential string) (*Snapshot, error)
}

// Adapters is the dispatch table from platform to adapter.
type Adapters map[Platform]Adapter

// NewAdapters builds a dispatch table keyed by each adapter's platform.
func NewAdapters(adapters ...Adapter) Adapters {
	set := make(Adapters, len(adapters))
	for _, a := range adapters {
		set[a.Platform()] = a
	}
	return set
}

// Lookup returns the adapter for p, or a NotFound error for unsupported platforms.
func (a Adapters) Lookup(p Platform) (Adapter, error) {
	adapter, ok := a[p]
	if !ok {
		return nil, NotFoundError("", "unsupported platform: %q", string(p))
	}
	return adapter, nil
}
