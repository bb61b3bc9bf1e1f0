package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treemerge/internal/errors"
	"treemerge/internal/sources/filesystem"
	"treemerge/internal/testutil"
	"treemerge/internal/tree"
)

func newMemFS(t *testing.T) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	for _, name := range []string{"b/2.png", "b/1.png", "a.zip", ".git/HEAD", "c/d/notes.txt"} {
		require.NoError(t, util.WriteFile(fs, name, []byte(name), 0o644))
	}
	require.NoError(t, fs.MkdirAll("empty", 0o755))
	require.NoError(t, fs.Symlink("b", "link"))
	return fs
}

func names(nodes []tree.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}

func TestEntry_Children(t *testing.T) {
	root := filesystem.New(newMemFS(t), "mem").Root()
	assert.Equal(t, "mem", root.Name())
	assert.Equal(t, tree.Parent, root.Kind())

	children, err := root.Children()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.zip", "b", "c", "empty", "link"}, names(children))

	kinds := make(map[string]tree.Kind)
	for _, c := range children {
		kinds[c.Name()] = c.Kind()
	}
	assert.Equal(t, tree.Leaf, kinds["a.zip"])
	assert.Equal(t, tree.Parent, kinds["b"])
	assert.Equal(t, tree.Parent, kinds["empty"])
	assert.Equal(t, tree.Leaf, kinds["link"], "symlinks are leaves")

	b := children[1].(*filesystem.Entry)
	assert.Equal(t, "b", b.Path())
	assert.Same(t, root, b.Parent())

	sub, err := b.Children()
	require.NoError(t, err)
	assert.Equal(t, []string{"1.png", "2.png"}, names(sub))

	again, err := b.Children()
	require.NoError(t, err)
	assert.Same(t, sub[0], again[0], "children are read once")

	empty, err := children[3].Children()
	require.NoError(t, err)
	assert.Empty(t, empty)

	leafChildren, err := children[0].Children()
	require.NoError(t, err)
	assert.Nil(t, leafChildren)
}

func TestEntry_Ignore(t *testing.T) {
	root := filesystem.New(newMemFS(t), "mem", filesystem.WithIgnore()).Root()
	children, err := root.Children()
	require.NoError(t, err)
	assert.Equal(t, []string{".git", "a.zip", "b", "c", "empty", "link"}, names(children))

	root = filesystem.New(newMemFS(t), "mem", filesystem.WithIgnore("b", "c", ".git")).Root()
	children, err = root.Children()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.zip", "empty", "link"}, names(children))
}

func TestOpen(t *testing.T) {
	src, err := filesystem.Open(testutil.Fixture(t, "archive"))
	require.NoError(t, err)

	root := src.Root()
	assert.Equal(t, "archive", root.Name())

	count, err := tree.Count(root)
	require.NoError(t, err)
	want, err := tree.Count(testutil.ArchiveTree())
	require.NoError(t, err)
	assert.Equal(t, want, count)
}

func TestOpen_Errors(t *testing.T) {
	_, err := filesystem.Open(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.IsCode(err, errors.SourceUnavailable), "error = %v", err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = filesystem.Open(file)
	assert.True(t, errors.IsCode(err, errors.SourceUnavailable), "error = %v", err)
}

func TestEntry_ReadError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "gone"), 0o755))

	src, err := filesystem.Open(dir)
	require.NoError(t, err)
	children, err := src.Root().Children()
	require.NoError(t, err)
	require.Len(t, children, 1)

	require.NoError(t, os.Remove(filepath.Join(dir, "gone")))
	_, err = children[0].Children()
	assert.True(t, errors.IsCode(err, errors.SourceRead), "error = %v", err)
}
