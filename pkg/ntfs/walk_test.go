package ntfs

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildTestTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "a"), 0o777))
	require.NoError(t, os.Mkdir(filepath.Join(root, "a", "b"), 0o777))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "f1"), nil, 0o666))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "b", "f2"), nil, 0o666))
	require.NoError(t, os.Mkdir(filepath.Join(root, "c"), 0o777))
	return root
}

func TestWalkDepthFirstVisitsParentBeforeChildren(t *testing.T) {
	t.Parallel()
	root := buildTestTree(t)

	var visited []string
	err := Walk(root, WalkNone, func(dir string, entries []os.DirEntry) error {
		rel, err := filepath.Rel(root, dir)
		require.NoError(t, err)
		visited = append(visited, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)

	require.Equal(t, ".", visited[0])
	indexOf := func(p string) int {
		for i, v := range visited {
			if v == p {
				return i
			}
		}
		return -1
	}
	require.Less(t, indexOf("."), indexOf("a"))
	require.Less(t, indexOf("a"), indexOf("a/b"))
	require.Less(t, indexOf("."), indexOf("c"))

	sorted := append([]string(nil), visited...)
	sort.Strings(sorted)
	require.ElementsMatch(t, []string{".", "a", "a/b", "c"}, sorted)
}

func TestWalkBreadthFirstOnceDoesNotDescend(t *testing.T) {
	t.Parallel()
	root := buildTestTree(t)

	var visited []string
	err := Walk(root, WalkBreadthFirstOnce, func(dir string, entries []os.DirEntry) error {
		visited = append(visited, dir)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{root}, visited)
}

func TestWalkMissingRootIsNotAnError(t *testing.T) {
	t.Parallel()

	called := false
	err := Walk(filepath.Join(t.TempDir(), "does-not-exist"), WalkNone, func(dir string, entries []os.DirEntry) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	require.False(t, called)
}

func TestWalkPropagatesCallbackError(t *testing.T) {
	t.Parallel()
	root := buildTestTree(t)

	boom := errTestBoom{}
	err := Walk(root, WalkNone, func(dir string, entries []os.DirEntry) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
}

type errTestBoom struct{}

func (errTestBoom) Error() string { return "boom" }
