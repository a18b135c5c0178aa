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


package storage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mus-format/mus-go"
	"github.com/poiesic/studybot/core"
)

// MarshalID encodes an ID as a fixed-width big-endian key so badger
// iterates IDs in numeric order.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

func UnmarshalID(data []byte) (core.ID, error) {
	if len(data) < 8 {
		return 0, fmt.Errorf("%w: id needs 8 bytes, got %d", ErrTruncatedData, len(data))
	}
	return core.ID(binary.BigEndian.Uint64(data)), nil
}

func MarshalMaterial(material *core.Material) ([]byte, error) {
	if material == nil {
		return nil, fmt.Errorf("%w: nil material", ErrSerializationFailed)
	}
	buf := make([]byte, core.MaterialMUS.Size(*material))
	core.MaterialMUS.Marshal(*material, buf)
	return buf, nil
}

func UnmarshalMaterial(data []byte) (*core.Material, error) {
	material, _, err := core.MaterialMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeError("material", err)
	}
	return &material, nil
}

func MarshalChunk(chunk *core.Chunk) ([]byte, error) {
	if chunk == nil {
		return nil, fmt.Errorf("%w: nil chunk", ErrSerializationFailed)
	}
	buf := make([]byte, core.ChunkMUS.Size(*chunk))
	core.ChunkMUS.Marshal(*chunk, buf)
	return buf, nil
}

func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := core.ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeError("chunk", err)
	}
	return &chunk, nil
}

func MarshalQARecord(record *core.QARecord) ([]byte, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: nil qa record", ErrSerializationFailed)
	}
	buf := make([]byte, core.QARecordMUS.Size(*record))
	core.QARecordMUS.Marshal(*record, buf)
	return buf, nil
}

func UnmarshalQARecord(data []byte) (*core.QARecord, error) {
	record, _, err := core.QARecordMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeError("qa record", err)
	}
	return &record, nil
}

func MarshalQuizRecord(record *core.QuizRecord) ([]byte, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: nil quiz record", ErrSerializationFailed)
	}
	buf := make([]byte, core.QuizRecordMUS.Size(*record))
	core.QuizRecordMUS.Marshal(*record, buf)
	return buf, nil
}

func UnmarshalQuizRecord(data []byte) (*core.QuizRecord, error) {
	record, _, err := core.QuizRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeError("quiz record", err)
	}
	return &record, nil
}

func decodeError(what string, err error) error {
	if errors.Is(err, mus.ErrTooSmallByteSlice) {
		return fmt.Errorf("%w: %s: %w", ErrTruncatedData, what, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrSerializationFailed, what, err)
}
