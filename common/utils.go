package common

// AlignUp rounds n up to the next multiple of alignment. Alignment must be a power of two.
func AlignUp(n, alignment uint64) uint64 {
	return (n + alignment - 1) &^ (alignment - 1)
}
