package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDotsWrapsAfterEightyOne(t *testing.T) {
	var buf bytes.Buffer
	d := NewDots(&buf)
	d.now = func() time.Time { return time.Date(2025, 1, 1, 9, 5, 7, 0, time.UTC) }

	for i := 0; i < 82; i++ {
		d.Advance()
	}
	d.Done()

	out := buf.String()
	assert.Equal(t, strings.Repeat(".", 81)+"\n[09:05:07] .\n", out)
}

func TestDotsDoneWithoutWork(t *testing.T) {
	var buf bytes.Buffer
	d := NewDots(&buf)
	d.Done()
	assert.Empty(t, buf.String())
}
