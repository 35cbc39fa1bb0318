package path_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LRN/libntlink/pkg/path"
)

func TestIsAbsolute(t *testing.T) {
	t.Parallel()

	require.True(t, path.IsAbsolute(`C:\foo`))
	require.True(t, path.IsAbsolute(`C:/foo`))
	require.True(t, path.IsAbsolute(`\\server\share`))
	require.True(t, path.IsAbsolute(`//server/share`))
	require.False(t, path.IsAbsolute(`foo\bar`))
	require.False(t, path.IsAbsolute(`C:`))
	require.False(t, path.IsAbsolute(``))

	// The drive letter quirk: the original libntlink accepts the raw
	// ASCII range 'A'..'z', which includes the six punctuation bytes
	// between 'Z' and 'a'. This is intentional and preserved verbatim.
	require.True(t, path.IsAbsolute("[:\\x"))
	require.True(t, path.IsAbsolute("`:\\x"))
}

func TestCanonicalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"already canonical", `C:\a\b\d`, `C:\a\b\d`},
		{"doubled separators", `C:\a\\b`, `C:\a\b`},
		{"dot segment", `C:\a\.\b`, `C:\a\b`},
		{"trailing dot", `C:\a\.`, `C:\a`},
		{"dot-dot segment", `C:\a\b\..\c`, `C:\a\c`},
		{"dot-dot at root is absorbed", `C:\..\a`, `C:\a`},
		{"bare drive root", `C:\`, `C:\`},
		{"combined", `C:\a\.\b\\c\..\d`, `C:\a\b\d`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := path.Canonicalize(tc.in, true)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestCanonicalizeNormalizeSeparators(t *testing.T) {
	t.Parallel()

	got, err := path.Canonicalize(`C:/a/b`, true)
	require.NoError(t, err)
	require.Equal(t, `C:\a\b`, got)

	got, err = path.Canonicalize(`C:/a/b`, false)
	require.NoError(t, err)
	require.Equal(t, `C:/a/b`, got)
}

func TestToAbsolute(t *testing.T) {
	t.Parallel()

	got, err := path.ToAbsolute(`C:\a\b`, `C:\other`)
	require.NoError(t, err)
	require.Equal(t, `C:\a\b`, got)

	got, err = path.ToAbsolute(`b\c`, `C:\a`)
	require.NoError(t, err)
	require.Equal(t, `C:\a\b\c`, got)

	got, err = path.ToAbsolute(`..\c`, `C:\a\b`)
	require.NoError(t, err)
	require.Equal(t, `C:\a\c`, got)

	_, err = path.ToAbsolute(``, `C:\a`)
	require.Error(t, err)

	_, err = path.ToAbsolute(`b`, `not-absolute`)
	require.Error(t, err)
}

func TestToRelative(t *testing.T) {
	t.Parallel()

	// abs is a descendant of base.
	got, err := path.ToRelative(`C:\a\b\c`, `C:\a`)
	require.NoError(t, err)
	require.Equal(t, `b\c`, got)

	// abs equals base.
	got, err = path.ToRelative(`C:\a\b`, `C:\a\b`)
	require.NoError(t, err)
	require.Equal(t, ``, got)

	// diverging paths below a common ancestor.
	got, err = path.ToRelative(`C:\a\x\y`, `C:\a\b\c`)
	require.NoError(t, err)
	require.Equal(t, `..\..\x\y`, got)

	// different drives is an error.
	_, err = path.ToRelative(`D:\a`, `C:\a`)
	require.Error(t, err)

	// case-insensitive common-prefix matching.
	got, err = path.ToRelative(`C:\A\b`, `C:\a\c`)
	require.NoError(t, err)
	require.Equal(t, `..\b`, got)
}

func TestContainsReparseAncestor(t *testing.T) {
	t.Parallel()

	probe := func(reparsePath string) path.ProbeFunc {
		return func(p string) (bool, error) {
			return p == reparsePath, nil
		}
	}

	has, err := path.ContainsReparseAncestor(`C:\a\b\c`, probe(`C:\a`))
	require.NoError(t, err)
	require.True(t, has)

	has, err = path.ContainsReparseAncestor(`C:\a\b\c`, probe(`C:\x\y`))
	require.NoError(t, err)
	require.False(t, has)

	// abs itself is never probed, only proper ancestors.
	has, err = path.ContainsReparseAncestor(`C:\a\b\c`, probe(`C:\a\b\c`))
	require.NoError(t, err)
	require.False(t, has)

	// probe errors propagate.
	wantErr := errors.New("boom")
	_, err = path.ContainsReparseAncestor(`C:\a\b\c`, func(string) (bool, error) {
		return false, wantErr
	})
	require.ErrorIs(t, err, wantErr)
}
