package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReset(t *testing.T) {
	root := filepath.Join(t.TempDir(), "site")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "stale", "deep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "stale", "deep", "old.html"), []byte("x"), 0o644))

	d := New(root)
	require.NoError(t, d.Reset())

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResetCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, New(root).Reset())
	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResetRefusesUnsafeRoots(t *testing.T) {
	parent := t.TempDir()
	project := filepath.Join(parent, "blog")
	post := filepath.Join(project, "content", "posts", "2024-01-01-a.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(post), 0o755))
	require.NoError(t, os.WriteFile(post, []byte("# A"), 0o644))
	t.Chdir(project)

	tests := []struct {
		name string
		root string
	}{
		{"empty", ""},
		{"dot", "."},
		{"filesystem root", "/"},
		{"parent", ".."},
		{"parent with trailing slash", "../"},
		{"absolute working directory", project},
		{"absolute ancestor", parent},
		{"roundabout working directory", "content/../"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.root).Reset()
			assert.ErrorIs(t, err, ErrUnsafeRoot)
			assert.FileExists(t, post)
		})
	}
}

func TestResetBelowWorkingDirectory(t *testing.T) {
	project := t.TempDir()
	t.Chdir(project)

	require.NoError(t, New("site").Reset())
	assert.DirExists(t, filepath.Join(project, "site"))
}

func TestWithin(t *testing.T) {
	tests := []struct {
		dir, path string
		want      bool
	}{
		{"/a/b", "/a/b", true},
		{"/a/b", "/a/b/c", true},
		{"/a/b", "/a", false},
		{"/a/b", "/a/bc", false},
		{"/a/b", "/a/..b", false},
		{"/", "/a", true},
		{"content", "content/posts", true},
		{"content/posts", "content", false},
		{"site", "static", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Within(tt.dir, tt.path), "%s in %s", tt.path, tt.dir)
	}
}

func TestWriteFile(t *testing.T) {
	d := New(t.TempDir())
	require.NoError(t, d.WriteFile("posts/hello.html", []byte("<p>hi</p>")))
	require.NoError(t, d.WriteFile("posts/hello.html", []byte("<p>again</p>")))

	got, err := os.ReadFile(d.Path("posts/hello.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>again</p>", string(got))

	entries, err := os.ReadDir(d.Path("posts"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "css", "site.css"), []byte("body{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "robots.txt"), []byte("User-agent: *"), 0o644))

	d := New(t.TempDir())
	n, err := d.CopyTree(src, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := os.ReadFile(d.Path("css/site.css"))
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(got))
}

func TestCopyTreeMissingSource(t *testing.T) {
	d := New(t.TempDir())
	n, err := d.CopyTree(filepath.Join(t.TempDir(), "missing"), "static")
	require.NoError(t, err)
	assert.Zero(t, n)
}
