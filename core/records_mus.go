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


package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the records stored in badger. Fields are written in
// declaration order; times keep microsecond precision and decode as UTC.
var (
	IDMUS         = idMUS{}
	MaterialMUS   = materialMUS{}
	ChunkMUS      = chunkMUS{}
	QARecordMUS   = qaRecordMUS{}
	QuizRecordMUS = quizRecordMUS{}
)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type materialMUS struct{}

func (s materialMUS) Marshal(v Material, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.SourcePath, bs[n:])
	n += varint.Int.Marshal(v.Pages, bs[n:])
	n += varint.Int.Marshal(v.ChunkSize, bs[n:])
	n += varint.Int.Marshal(v.Overlap, bs[n:])
	n += varint.Int.Marshal(v.Dimension, bs[n:])
	n += varint.Int.Marshal(v.ChunkCount, bs[n:])
	n += ord.String.Marshal(v.EmbeddingModel, bs[n:])
	n += raw.TimeUnixMicroUTC.Marshal(v.InsertedAt, bs[n:])
	return n + raw.TimeUnixMicroUTC.Marshal(v.UpdatedAt, bs[n:])
}

func (s materialMUS) Unmarshal(bs []byte) (v Material, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SourcePath, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Pages, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChunkSize, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Overlap, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Dimension, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChunkCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EmbeddingModel, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:])
	n += n1
	return
}

func (s materialMUS) Size(v Material) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.SourcePath)
	size += varint.Int.Size(v.Pages)
	size += varint.Int.Size(v.ChunkSize)
	size += varint.Int.Size(v.Overlap)
	size += varint.Int.Size(v.Dimension)
	size += varint.Int.Size(v.ChunkCount)
	size += ord.String.Size(v.EmbeddingModel)
	size += raw.TimeUnixMicroUTC.Size(v.InsertedAt)
	return size + raw.TimeUnixMicroUTC.Size(v.UpdatedAt)
}

func (s materialMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type chunkMUS struct{}

func (s chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.MaterialId, bs)
	n += varint.Int.Marshal(v.Ordinal, bs[n:])
	return n + ord.String.Marshal(v.Text, bs[n:])
}

func (s chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	var n1 int
	if v.MaterialId, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	v.Ordinal, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s chunkMUS) Size(v Chunk) (size int) {
	size = IDMUS.Size(v.MaterialId)
	size += varint.Int.Size(v.Ordinal)
	return size + ord.String.Size(v.Text)
}

func (s chunkMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type qaRecordMUS struct{}

func (s qaRecordMUS) Marshal(v QARecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.StudentId, bs[n:])
	n += ord.String.Marshal(v.Question, bs[n:])
	n += ord.String.Marshal(v.Answer, bs[n:])
	return n + raw.TimeUnixMicroUTC.Marshal(v.Timestamp, bs[n:])
}

func (s qaRecordMUS) Unmarshal(bs []byte) (v QARecord, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	v.StudentId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Question, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Answer, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:])
	n += n1
	return
}

func (s qaRecordMUS) Size(v QARecord) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.StudentId)
	size += ord.String.Size(v.Question)
	size += ord.String.Size(v.Answer)
	return size + raw.TimeUnixMicroUTC.Size(v.Timestamp)
}

func (s qaRecordMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type quizRecordMUS struct{}

func (s quizRecordMUS) Marshal(v QuizRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.StudentId, bs[n:])
	n += ord.String.Marshal(v.Question, bs[n:])
	n += ord.Bool.Marshal(v.Correct, bs[n:])
	return n + raw.TimeUnixMicroUTC.Marshal(v.Timestamp, bs[n:])
}

func (s quizRecordMUS) Unmarshal(bs []byte) (v QuizRecord, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	v.StudentId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Question, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Correct, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:])
	n += n1
	return
}

func (s quizRecordMUS) Size(v QuizRecord) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.StudentId)
	size += ord.String.Size(v.Question)
	size += ord.Bool.Size(v.Correct)
	return size + raw.TimeUnixMicroUTC.Size(v.Timestamp)
}

func (s quizRecordMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}
