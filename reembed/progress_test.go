package reembed

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Reporting(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, "biology.pdf", 10, 4)
	p.Start()

	p.Add(3)
	assert.Empty(t, buf.String(), "below interval")

	p.Add(2)
	assert.Contains(t, buf.String(), "biology.pdf: 5/10 chunks (50.0%)")

	p.Add(100)
	assert.Equal(t, 10, p.Done(), "capped at total")

	p.Finish()
	out := buf.String()
	assert.Contains(t, out, "10/10 chunks (100.0%)")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, "m", 10, 1)
	p.Add(5)
	p.Finish()
	assert.Empty(t, buf.String())
	assert.Zero(t, p.Done())
	assert.Zero(t, p.Elapsed())
}

func TestProgressTracker_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, "m", 0, 0)
	p.Start()
	p.Finish()
	assert.Contains(t, buf.String(), "0/0 chunks (0.0%)")
}
