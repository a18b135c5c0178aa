package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrNoChunks is returned when a material has no stored chunks to embed.
	ErrNoChunks = errors.New("material has no chunks")

	// ErrOrdinalGap is returned when stored chunk ordinals are not dense.
	ErrOrdinalGap = errors.New("chunk ordinals are not contiguous")
)
