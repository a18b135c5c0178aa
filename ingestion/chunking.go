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


package ingestion

import (
	"strings"

	"github.com/poiesic/studybot/core"
)

// Page thresholds for adaptive chunking.
const (
	smallDocumentPages  = 5
	mediumDocumentPages = 30
)

var (
	smallChunkParams  = core.ChunkParams{Size: 200, Overlap: 30}
	mediumChunkParams = core.ChunkParams{Size: 400, Overlap: 50}
	largeChunkParams  = core.ChunkParams{Size: 600, Overlap: 100}
)

// ChunkText splits text into windows of size words. Windows start at word 0
// and every size-overlap words after it, so neighbors share overlap words.
// Windows near the end may be shorter than size.
func ChunkText(text string, size, overlap int) ([]string, error) {
	params := core.ChunkParams{Size: size, Overlap: overlap}
	if err := core.ValidateChunkParams(params); err != nil {
		return nil, err
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	step := params.Step()
	chunks := make([]string, 0, (len(words)+step-1)/step)
	for start := 0; start < len(words); start += step {
		end := min(start+size, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks, nil
}

// AdaptiveParams picks chunk parameters from a document's page count.
// Short documents get small windows; long ones get large windows.
func AdaptiveParams(pages int) core.ChunkParams {
	switch {
	case pages <= smallDocumentPages:
		return smallChunkParams
	case pages <= mediumDocumentPages:
		return mediumChunkParams
	default:
		return largeChunkParams
	}
}

// AdaptiveChunking chunks text with AdaptiveParams(pages).
func AdaptiveChunking(text string, pages int) ([]string, core.ChunkParams, error) {
	params := AdaptiveParams(pages)
	chunks, err := ChunkText(text, params.Size, params.Overlap)
	return chunks, params, err
}
