//go:build windows
// +build windows

package ntfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateLinkJunctionAndReadLink(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	require.NoError(t, os.Mkdir(a, 0o777))

	require.NoError(t, CreateLink(a, b))

	info, err := StatLink(b)
	require.NoError(t, err)
	require.True(t, info.Kind == KindJunction || info.Kind == KindDirectorySymlink)

	target, err := ReadLink(b)
	require.NoError(t, err)
	require.Contains(t, target, "a")
}

func TestRemoveLinkLeavesTargetIntact(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	require.NoError(t, os.Mkdir(a, 0o777))
	require.NoError(t, CreateLink(a, b))

	require.NoError(t, RemoveLink(b))

	_, err := os.Stat(b)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(a)
	require.NoError(t, err)
}

func TestCreateLinkFileHardlink(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file")
	alias := filepath.Join(root, "alias")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o666))

	before, err := StatLink(file)
	require.NoError(t, err)
	require.EqualValues(t, 1, before.LinkCount)

	require.NoError(t, CreateLink(file, alias))

	after, err := StatLink(file)
	require.NoError(t, err)
	require.EqualValues(t, 2, after.LinkCount)

	aliasInfo, err := StatLink(alias)
	require.NoError(t, err)
	require.True(t, SameFile(after, aliasInfo))
}

func TestCreateLinkRejectsExistingLinkName(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	require.NoError(t, os.Mkdir(a, 0o777))
	require.NoError(t, os.Mkdir(b, 0o777))

	err := CreateLink(a, b)
	require.Error(t, err)
}

func TestCreateLinkRejectsMissingTarget(t *testing.T) {
	root := t.TempDir()
	err := CreateLink(filepath.Join(root, "nope"), filepath.Join(root, "b"))
	require.Error(t, err)
}

func TestChownLinkAlwaysFails(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "a"), 0o777))
	require.Error(t, ChownLink(filepath.Join(root, "a"), 0, 0))
}

func TestRenameSameFileIsNoOp(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	require.NoError(t, os.WriteFile(a, []byte("x"), 0o666))
	require.NoError(t, Rename(a, a))
}

func TestRenameMovesFile(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	require.NoError(t, os.WriteFile(a, []byte("x"), 0o666))

	require.NoError(t, Rename(a, b))

	_, err := os.Stat(a)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(b)
	require.NoError(t, err)
}

func TestRenameKindConflict(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "dir")
	file := filepath.Join(root, "file")
	require.NoError(t, os.Mkdir(dir, 0o777))
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o666))

	require.Error(t, Rename(dir, file))
	require.Error(t, Rename(file, dir))
}
