package outwriter

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"files": 2}))
	assert.Equal(t, "{\n  \"files\": 2\n}\n", buf.String())

	err := writeJSON(&buf, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestWriteCSVWithHeader(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"path", "holder"}, func(w *csv.Writer) error {
		return w.Write([]string{"a.go", "Phala Network, Inc"})
	})
	require.NoError(t, err)
	assert.Equal(t, "path,holder\na.go,\"Phala Network, Inc\"\n", buf.String())

	err = writeCSVWithHeader(&buf, []string{"path"}, func(*csv.Writer) error { return assert.AnError })
	assert.Equal(t, assert.AnError, err)
}

func TestWriteWithFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, writeWithFile(target, func(w io.Writer) error {
		_, err := io.WriteString(w, "report")
		return err
	}, "Wrote report"))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "report", string(content))

	assert.Equal(t, assert.AnError, writeWithFile(target, func(io.Writer) error { return assert.AnError }, "x"))
	assert.Error(t, writeWithFile("/nonexistent/dir/report.txt", func(io.Writer) error { return nil }, "x"))
}
