// Package ingestion turns PDF study material into searchable chunks.
//
// The Pipeline type manages the build workflow for a material:
//   - Extracting page text from the PDF
//   - Splitting the text into overlapping word windows sized by page count
//   - Embedding the windows in batches on a worker pool
//   - Building a flat vector index and persisting it with the chunk list
//
// Chunk i and vector i of the index always describe the same window. Load
// restores a previously built material and refuses mismatched snapshots.
package ingestion
