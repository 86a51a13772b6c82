package markdown

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menteora/quill/core"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

func newReader(buf *bytes.Buffer) *Reader {
	return &Reader{
		Now:    func() time.Time { return fixedNow },
		Logger: log.New(buf),
	}
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"2024-01-02-b.md":  "# B\n",
		"2024-01-01-a.md":  "tags: go\n# A\n",
		"notes.txt":        "ignored",
		"2024-01-03-c.MD":  "# C\n",
		"2024-01-04-d.png": "ignored",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.md"), 0o755))

	var buf bytes.Buffer
	docs, err := newReader(&buf).ReadDir(dir, core.KindPost)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "2024-01-01-a.md", docs[0].Name)
	assert.Equal(t, "2024-01-02-b.md", docs[1].Name)
	assert.Equal(t, "2024-01-03-c.MD", docs[2].Name)
	assert.Equal(t, []string{"go"}, docs[0].Tags)
	assert.Empty(t, buf.String(), "dated posts produce no warnings")
}

func TestReadDirMissing(t *testing.T) {
	var buf bytes.Buffer
	docs, err := newReader(&buf).ReadDir(filepath.Join(t.TempDir(), "nope"), core.KindPage)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestReadFileDateFallback(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"undated.md": "# Undated\n"})

	var buf bytes.Buffer
	d, err := newReader(&buf).ReadFile(filepath.Join(dir, "undated.md"), core.KindPost)
	require.NoError(t, err)
	assert.True(t, d.DateFallback)
	assert.Equal(t, fixedNow, d.Date)
	assert.Contains(t, buf.String(), "undated.md")
}

func TestReadFileMissing(t *testing.T) {
	_, err := (&Reader{}).ReadFile(filepath.Join(t.TempDir(), "gone.md"), core.KindPage)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIsContent(t *testing.T) {
	assert.True(t, IsContent("a.md"))
	assert.True(t, IsContent("a.Markdown"))
	assert.False(t, IsContent("a.html"))
	assert.False(t, IsContent("md"))
}
