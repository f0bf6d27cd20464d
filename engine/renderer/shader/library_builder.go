package shader

// LibraryBuilderOption is a functional option for configuring a Library.
type LibraryBuilderOption func(*library)

// WithSnippet registers an additional snippet, replacing a built-in of the same name.
//
// Parameters:
//   - name: snippet name used by //@hx:include
//   - source: WGSL source
//
// Returns:
//   - LibraryBuilderOption: a function that applies the snippet to a library
func WithSnippet(name, source string) LibraryBuilderOption {
	return func(l *library) {
		l.snippets[name] = source
	}
}
