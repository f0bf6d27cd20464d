package window

// WindowBuilderOption configures an engineWindow before the platform window is created.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the title bar text. An empty title keeps the default.
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		if title != "" {
			w.title = title
		}
	}
}

// WithWidth sets the initial framebuffer width; non-positive values are ignored.
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 {
			w.width = width
		}
	}
}

// WithHeight sets the initial framebuffer height; non-positive values are ignored.
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if height > 0 {
			w.height = height
		}
	}
}

// WithSizeLimits constrains interactive resizing. Zero leaves a side unconstrained.
//
// Parameters:
//   - minWidth, minHeight: smallest size in screen coordinates
//   - maxWidth, maxHeight: largest size in screen coordinates
//
// Returns:
//   - WindowBuilderOption: the option
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth, w.minHeight = minWidth, minHeight
		w.maxWidth, w.maxHeight = maxWidth, maxHeight
	}
}
