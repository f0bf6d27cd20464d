package effect

// FogBuilderOption is a functional option for configuring a Fog.
type FogBuilderOption func(*fog)

// WithDensity sets the fog density per world unit.
//
// Parameters:
//   - d: density, negative values are clamped to 0
//
// Returns:
//   - FogBuilderOption: a function that applies the density to a fog
func WithDensity(d float32) FogBuilderOption {
	return func(f *fog) {
		f.SetDensity(d)
	}
}

// WithTint sets the linear RGB fog color.
func WithTint(c [3]float32) FogBuilderOption {
	return func(f *fog) {
		f.tint = c
	}
}

// WithHeightFallOff sets how quickly the fog thins with height.
func WithHeightFallOff(v float32) FogBuilderOption {
	return func(f *fog) {
		f.heightFallOff = v
	}
}

// WithStartDistance sets the view distance at which fog begins.
func WithStartDistance(d float32) FogBuilderOption {
	return func(f *fog) {
		f.SetStartDistance(d)
	}
}

// WithEnabled sets whether the fog starts enabled.
func WithEnabled(enabled bool) FogBuilderOption {
	return func(f *fog) {
		f.enabled = enabled
	}
}
