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


package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Snapshot layout, all little endian:
//
//	magic   [4]byte "SBIX"
//	version uint16
//	_       uint16
//	dim     uint32
//	count   uint64
//	data    [count*dim]float32
const (
	snapshotVersion  = 1
	headerSize       = 20
	maxSnapshotFloat = 1 << 31
	maxSnapshotDim   = 1 << 16
	// Header counts are untrusted; larger snapshots grow while reading.
	maxPreallocFloat = 1 << 20
)

var snapshotMagic = [4]byte{'S', 'B', 'I', 'X'}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// WriteTo writes the index in binary form. It implements io.WriterTo.
func (f *Flat) WriteTo(w io.Writer) (int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	cw := &countingWriter{w: w}
	var header [headerSize]byte
	copy(header[0:4], snapshotMagic[:])
	binary.LittleEndian.PutUint16(header[4:6], snapshotVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(f.dim))
	binary.LittleEndian.PutUint64(header[12:20], uint64(f.len()))
	if _, err := cw.Write(header[:]); err != nil {
		return cw.n, err
	}

	buf := make([]byte, 4*f.dim)
	for i := 0; i < f.len(); i++ {
		for j, v := range f.row(i) {
			binary.LittleEndian.PutUint32(buf[4*j:], math.Float32bits(v))
		}
		if _, err := cw.Write(buf); err != nil {
			return cw.n, err
		}
	}
	return cw.n, nil
}

// ReadFrom replaces the index contents with a snapshot read from r.
// It implements io.ReaderFrom.
func (f *Flat) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}

	var header [headerSize]byte
	if _, err := io.ReadFull(cr, header[:]); err != nil {
		return cr.n, fmt.Errorf("%w: reading header: %w", ErrCorruptIndex, err)
	}
	if [4]byte(header[0:4]) != snapshotMagic {
		return cr.n, fmt.Errorf("%w: bad magic %q", ErrCorruptIndex, header[0:4])
	}
	if v := binary.LittleEndian.Uint16(header[4:6]); v != snapshotVersion {
		return cr.n, fmt.Errorf("%w: unsupported version %d", ErrCorruptIndex, v)
	}
	dim := int(binary.LittleEndian.Uint32(header[8:12]))
	count := binary.LittleEndian.Uint64(header[12:20])
	if dim <= 0 || dim > maxSnapshotDim {
		return cr.n, fmt.Errorf("%w: dimension %d", ErrCorruptIndex, dim)
	}
	if count > maxSnapshotFloat/uint64(dim) {
		return cr.n, fmt.Errorf("%w: %d vectors of dimension %d is too large", ErrCorruptIndex, count, dim)
	}

	raw := make([]byte, 4*dim)
	data := make([]float32, 0, min(int(count)*dim, maxPreallocFloat))
	for i := uint64(0); i < count; i++ {
		if _, err := io.ReadFull(cr, raw); err != nil {
			return cr.n, fmt.Errorf("%w: vector %d: %w", ErrCorruptIndex, i, err)
		}
		for j := 0; j < dim; j++ {
			data = append(data, math.Float32frombits(binary.LittleEndian.Uint32(raw[4*j:])))
		}
	}

	f.mu.Lock()
	f.dim = dim
	f.data = data
	f.mu.Unlock()
	return cr.n, nil
}

// SaveToFile writes a zstd-compressed snapshot to path.
// The file is replaced atomically.
func (f *Flat) SaveToFile(path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	enc, err := zstd.NewWriter(tmp, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if _, err := f.WriteTo(enc); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFromFile reads a snapshot written by SaveToFile.
func LoadFromFile(path string) (*Flat, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	dec, err := zstd.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	f := &Flat{}
	if _, err := f.ReadFrom(dec); err != nil {
		if errors.Is(err, zstd.ErrMagicMismatch) {
			return nil, fmt.Errorf("%w: %w", ErrCorruptIndex, err)
		}
		return nil, err
	}
	return f, nil
}
