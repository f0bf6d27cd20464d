package shader

// ProgramCacheBuilderOption is a functional option for configuring a ProgramCache.
type ProgramCacheBuilderOption func(*programCache)

// WithRetention sets how many frames an idle program survives a sweep. Values below 1 are
// raised to 1 so a program used in the previous frame is never evicted.
//
// Parameters:
//   - frames: the retention horizon
//
// Returns:
//   - ProgramCacheBuilderOption: a function that applies the retention to a cache
func WithRetention(frames uint64) ProgramCacheBuilderOption {
	return func(c *programCache) {
		c.retention = max(frames, 1)
	}
}
