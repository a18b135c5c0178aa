// Package reembed rebuilds the vector index of a stored study material with a
// new or updated embedding model.
//
// Chunks are read back from storage in ordinal order, embedded in batches with
// retry and exponential backoff, and appended to a fresh index so that vector i
// is again the embedding of chunk i. Progress is written to an io.Writer.
package reembed
