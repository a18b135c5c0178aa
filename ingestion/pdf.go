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
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
)

// ExtractFunc reads a document and returns its text and page count.
type ExtractFunc func(ctx context.Context, path string) (string, int, error)

// ExtractText returns the text of every page of a PDF, each followed by a
// newline, along with the page count. Pages without text are skipped but
// still counted.
func ExtractText(ctx context.Context, path string) (string, int, error) {
	docs, err := loadPDF(ctx, path)
	if err != nil {
		return "", 0, err
	}

	var b strings.Builder
	for _, doc := range docs {
		if strings.TrimSpace(doc.PageContent) == "" {
			continue
		}
		b.WriteString(doc.PageContent)
		b.WriteByte('\n')
	}
	return b.String(), len(docs), nil
}

// CountPages returns the number of pages in a PDF.
func CountPages(ctx context.Context, path string) (int, error) {
	docs, err := loadPDF(ctx, path)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// loadPDF returns one document per page.
func loadPDF(ctx context.Context, path string) ([]schema.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	docs, err := documentloaders.NewPDF(f, info.Size()).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading pdf %s: %w", path, err)
	}
	return docs, nil
}
