package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestPDF writes a minimal PDF with one text line per page.
// An empty string produces a page without text.
func writeTestPDF(t *testing.T, pages ...string) string {
	t.Helper()

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	for i, text := range pages {
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			5+2*i))
		stream := "BT ET"
		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestExtractText(t *testing.T) {
	path := writeTestPDF(t, "Cells are the basic unit of life.", "", "Mitochondria make energy.")

	text, pages, err := ExtractText(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, pages, "pages without text still count")
	assert.Contains(t, text, "Cells are the basic unit of life.")
	assert.Contains(t, text, "Mitochondria make energy.")
	assert.True(t, strings.HasSuffix(text, "\n"))
	assert.Equal(t, 2, strings.Count(text, "\n"))
}

func TestCountPages(t *testing.T) {
	path := writeTestPDF(t, "one", "two", "three", "four")

	pages, err := CountPages(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 4, pages)
}

func TestExtractText_Errors(t *testing.T) {
	_, _, err := ExtractText(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	notPDF := filepath.Join(t.TempDir(), "plain.pdf")
	require.NoError(t, os.WriteFile(notPDF, bytes.Repeat([]byte("not a pdf "), 20), 0o644))
	_, _, err = ExtractText(context.Background(), notPDF)
	assert.Error(t, err)
}
