// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package index provides an exact nearest-neighbor vector index.
//
// Flat compares a query against every stored vector using squared Euclidean
// distance, so results are exact and ordered from closest to farthest. Vectors
// are addressed by insertion ordinal: the i-th vector added is ordinal i. Callers
// keep a parallel slice (chunk texts, sentences) using the same ordinals.
//
// Indexes can be written to and read from a compact binary format, and saved to
// disk as zstd-compressed snapshot files.
package index

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// Result is one search hit.
type Result struct {
	Ordinal  int
	Distance float32
}

// Flat is an exact L2 index over fixed-dimension float32 vectors.
// It is safe for concurrent readers and a single writer.
type Flat struct {
	mu   sync.RWMutex
	dim  int
	data []float32 // row-major, len = count*dim
}

// NewFlat creates an empty index for vectors of the given dimension.
func NewFlat(dim int) (*Flat, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, dim)
	}
	return &Flat{dim: dim}, nil
}

// Build creates an index holding vectors in order.
// The dimension is taken from the first vector.
func Build(vectors [][]float32) (*Flat, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyIndex
	}
	f, err := NewFlat(len(vectors[0]))
	if err != nil {
		return nil, err
	}
	if err := f.Add(vectors...); err != nil {
		return nil, err
	}
	return f, nil
}

// Dimension returns the vector dimension.
func (f *Flat) Dimension() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dim
}

// Len returns the number of stored vectors.
func (f *Flat) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.len()
}

func (f *Flat) len() int {
	if f.dim == 0 {
		return 0
	}
	return len(f.data) / f.dim
}

// Add appends vectors. Either all are added or none are.
func (f *Flat) Add(vectors ...[]float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("%w: vector %d has %d values, index has %d", ErrDimensionMismatch, i, len(v), f.dim)
		}
	}
	f.data = slices.Grow(f.data, len(vectors)*f.dim)
	for _, v := range vectors {
		f.data = append(f.data, v...)
	}
	return nil
}

// Vector returns a copy of the vector stored at ordinal.
func (f *Flat) Vector(ordinal int) ([]float32, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if ordinal < 0 || ordinal >= f.len() {
		return nil, fmt.Errorf("%w: %d", ErrOrdinalOutOfRange, ordinal)
	}
	return slices.Clone(f.row(ordinal)), nil
}

// Search returns up to k nearest vectors ordered by ascending distance.
// Ties are broken by ordinal. k is capped to Len; k <= 0 returns nothing.
func (f *Flat) Search(query []float32, k int) ([]Result, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: query has %d values, index has %d", ErrDimensionMismatch, len(query), f.dim)
	}
	n := f.len()
	if k <= 0 || n == 0 {
		return nil, nil
	}
	k = min(k, n)

	results := make([]Result, n)
	for i := 0; i < n; i++ {
		results[i] = Result{Ordinal: i, Distance: SquaredL2(query, f.row(i))}
	}
	slices.SortFunc(results, func(a, b Result) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Ordinal, b.Ordinal)
	})
	return results[:k], nil
}

// Reset removes all vectors and keeps the dimension.
func (f *Flat) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = nil
}

func (f *Flat) row(i int) []float32 {
	return f.data[i*f.dim : (i+1)*f.dim]
}

// SquaredL2 returns the squared Euclidean distance between a and b.
// Vectors must have equal length.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
