package fsx_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/smasher164/ctype/fsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemFS(t *testing.T) {
	mfs := fsx.NewMemFS(
		[2]string{"a/b/c.h", "hello"},
		[2]string{"a/d/e.c", "goodbye"},
		[2]string{"f/g/h.default", "another one"},
	)
	if err := fstest.TestFS(mfs, "a/b/c.h", "a/d/e.c", "f/g/h.default"); err != nil {
		t.Fatal(err)
	}
}

func TestMemFSCreate(t *testing.T) {
	mfs := fsx.NewMemFS([2]string{"a/b.c", "old"})

	f, err := fsx.Create(mfs, "a/b.c")
	require.NoError(t, err)
	_, err = f.Write([]byte("new"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	b, err := fs.ReadFile(mfs, "a/b.c")
	require.NoError(t, err)
	assert.Equal(t, "new", string(b))

	_, err = fsx.Create(mfs, "missing/x.c")
	assert.ErrorIs(t, err, fs.ErrNotExist)
	_, err = fsx.Create(mfs, "a")
	assert.ErrorIs(t, err, fs.ErrExist)
}

func TestCreateAll(t *testing.T) {
	mfs := fsx.NewMemFS()
	f, err := fsx.CreateAll(mfs, "gen/c/_types.h", 0o755)
	require.NoError(t, err)
	_, err = f.Write([]byte("typedef int x;\n"))
	require.NoError(t, err)

	// Existing directories are reused.
	_, err = fsx.CreateAll(mfs, "gen/_types.c", 0o755)
	require.NoError(t, err)

	b, err := fs.ReadFile(mfs, "gen/c/_types.h")
	require.NoError(t, err)
	assert.Equal(t, "typedef int x;\n", string(b))

	entries, err := fs.ReadDir(mfs, "gen")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"_types.c", "c"}, names)
}

func TestDirFS(t *testing.T) {
	root := t.TempDir()
	dfs := fsx.DirFS(root)

	f, err := fsx.CreateAll(dfs, "out/_types.c", 0o755)
	require.NoError(t, err)
	_, err = f.Write([]byte("int main;\n"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	b, err := os.ReadFile(filepath.Join(root, "out", "_types.c"))
	require.NoError(t, err)
	assert.Equal(t, "int main;\n", string(b))

	_, err = dfs.Open("../escape")
	assert.Error(t, err)
	_, err = dfs.Stat("nope")
	var pe *fs.PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "nope", pe.Path)
}

func TestUnsupported(t *testing.T) {
	_, err := fsx.Create(fstest.MapFS{}, "x")
	assert.Error(t, err)
	assert.Error(t, fsx.Mkdir(fstest.MapFS{}, "x", 0))
}
