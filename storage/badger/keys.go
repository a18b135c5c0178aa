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


package badger

import (
	"encoding/binary"
	"time"

	"github.com/poiesic/studybot/core"
)

const (
	materialPrefix     = "matrec"
	chunkPrefix        = "chunk"
	qaRecordPrefix     = "qarec"
	qaStudentPrefix    = "qastu"
	qaIDSeq            = "qaseq"
	quizRecordPrefix   = "quizrec"
	quizStudentPrefix  = "quizstu"
	quizIDSeq          = "quizseq"
	studentKeySentinel = 0x00
)

// makeIDKey builds prefix + ":" + big-endian id.
func makeIDKey(prefix string, id core.ID) []byte {
	buf := make([]byte, len(prefix)+1+8)
	offset := copy(buf, prefix)
	buf[offset] = ':'
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeMaterialKey generates a key for a material by ID.
func makeMaterialKey(id core.ID) []byte {
	return makeIDKey(materialPrefix, id)
}

// makePartialChunkKey generates the prefix shared by all chunks of a material.
func makePartialChunkKey(materialID core.ID) []byte {
	return makeIDKey(chunkPrefix, materialID)
}

// makeChunkKey generates a composite key for a chunk.
// Ordinals are written in BigEndian order so chunks iterate in ordinal order.
func makeChunkKey(materialID core.ID, ordinal int) []byte {
	partial := makePartialChunkKey(materialID)
	buf := make([]byte, len(partial)+4)
	offset := copy(buf, partial)
	binary.BigEndian.PutUint32(buf[offset:], uint32(ordinal))
	return buf
}

// makeStudentPrefix generates the per-student index prefix.
// The sentinel byte keeps "amy" from matching "amy2".
func makeStudentPrefix(prefix, studentID string) []byte {
	buf := make([]byte, 0, len(prefix)+1+len(studentID)+1)
	buf = append(buf, prefix...)
	buf = append(buf, ':')
	buf = append(buf, studentID...)
	buf = append(buf, studentKeySentinel)
	return buf
}

// makeStudentTimeKey generates a composite key ordering a student's entries by time.
func makeStudentTimeKey(prefix, studentID string, timestamp time.Time, id core.ID) []byte {
	partial := makeStudentPrefix(prefix, studentID)
	buf := make([]byte, len(partial)+16)
	offset := copy(buf, partial)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// prefixEnd returns the smallest key greater than every key starting with prefix.
// Used as the seek position for reverse iteration.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix)+1)
	copy(end, prefix)
	end[len(prefix)] = 0xFF
	return end
}
