package mountain

import "context"

// Adapter fetches and normalizes conditions for one resort. Each resort
// family has its own implementation because the upstream payload shapes,
// field names and open/closed vocabularies differ per operator; the set is
// closed and known at compile time.
type Adapter interface {
	// Slug returns the stable resort identifier (e.g. "mount-snow").
	Slug() string
	// Name returns the display name (e.g. "Mount Snow").
	Name() string
	// Fetch builds a complete MountainData. Partial upstream failure degrades
	// the affected section to zeroed defaults; the result is always
	// structurally valid.
	Fetch(ctx context.Context) (*MountainData, error)
}
