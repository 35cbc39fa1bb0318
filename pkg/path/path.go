// Package path implements the path algebra described by libntlink's
// design: classifying paths as absolute or relative, joining a
// relative path onto a base, computing one path relative to another,
// and canonicalizing separators and "." / ".." segments the way NTFS
// does.
//
// The package treats paths as plain strings of UTF-16-equivalent
// Unicode code units (represented here as Go strings); it performs no
// filesystem I/O of its own. Operations that need to know whether an
// intermediate path component is a reparse point (ContainsReparseAncestor)
// accept a caller-supplied probe function instead of calling into the
// operating system directly, so that this package stays pure and
// testable on any GOOS. See package ntfs for the Windows-backed probe.
package path

import (
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LRN/libntlink/pkg/util"
)

// IsAbsolute reports whether p is an absolute Windows path: either a
// UNC path ("\\server\share...") or a drive-letter root ("X:\..." or
// "X:/...").
//
// The drive letter check deliberately accepts the ASCII range 'A'..'z',
// not just 'A'..'Z' or 'a'..'z'. That range includes six punctuation
// characters ('[', '\', ']', '^', '_', '`') between 'Z' and 'a'. This
// mirrors IsAbsName() in the original libntlink C sources byte for
// byte; it is a quirk of the original, not a bug introduced here, and
// is preserved rather than "fixed" per the design notes.
func IsAbsolute(p string) bool {
	if len(p) < 2 {
		return false
	}
	if (p[0] == '\\' || p[0] == '/') && (p[1] == '\\' || p[1] == '/') {
		return true
	}
	if len(p) >= 3 && p[0] >= 'A' && p[0] <= 'z' && p[1] == ':' && (p[2] == '\\' || p[2] == '/') {
		return true
	}
	return false
}

// ToAbsolute turns a (possibly relative) path into an absolute one.
//
// If p is already absolute, base is ignored. Otherwise p is joined
// onto base; if base is empty, the process's current
// directory is used (see CurrentDirectory). The result is always
// passed through Canonicalize with separator normalization enabled.
func ToAbsolute(p string, base string) (string, error) {
	if p == "" {
		return "", status.Error(codes.InvalidArgument, "Path is empty")
	}
	if IsAbsolute(p) {
		return Canonicalize(p, true)
	}
	if base == "" {
		cwd, err := CurrentDirectory()
		if err != nil {
			return "", util.StatusWrap(err, "Failed to obtain current directory")
		}
		base = cwd
	}
	if !IsAbsolute(base) {
		return "", status.Error(codes.InvalidArgument, "Base path is not absolute")
	}
	joined := strings.TrimRight(base, `\/`) + `\` + p
	return Canonicalize(joined, true)
}

// ToRelative computes a path equivalent to abs when resolved against
// base, both of which must be absolute paths on the same drive.
//
// Three cases (matching GetRelNameW in the original sources):
//
//  1. abs is base, or a descendant of base: the result is the
//     remainder of abs after stripping the base prefix (and one
//     separator), or the empty string if abs == base.
//  2. abs and base diverge below a common ancestor: the result is one
//     "..\" per remaining segment of base below the common ancestor,
//     followed by the tail of abs below the common ancestor.
//  3. abs and base are on different drives: an error.
//
// There is no leading separator in the result in any case.
func ToRelative(abs string, base string) (string, error) {
	if !IsAbsolute(abs) {
		return "", status.Error(codes.InvalidArgument, "Path is not absolute")
	}
	if !IsAbsolute(base) {
		return "", status.Error(codes.InvalidArgument, "Base path is not absolute")
	}
	sAbs, err := Canonicalize(abs, true)
	if err != nil {
		return "", util.StatusWrapWithCode(err, codes.InvalidArgument, "Failed to canonicalize path")
	}
	sBase, err := Canonicalize(base, true)
	if err != nil {
		return "", util.StatusWrapWithCode(err, codes.InvalidArgument, "Failed to canonicalize base path")
	}

	if !strings.EqualFold(sAbs[:1], sBase[:1]) {
		return "", status.Error(codes.InvalidArgument, "Path and base path are on different drives")
	}

	if len(sAbs) >= len(sBase) && strings.EqualFold(sAbs[:len(sBase)], sBase) {
		// abs is base, or a descendant of base.
		rest := sAbs[len(sBase):]
		if rest == "" {
			return "", nil
		}
		if rest[0] == '\\' || rest[0] == '/' {
			return rest[1:], nil
		}
		if last := sBase[len(sBase)-1]; last == '\\' || last == '/' {
			return rest, nil
		}
		// Otherwise abs only shares a name prefix with base's last
		// segment (e.g. "C:\ab" against "C:\a"): not a descendant.
	}

	// abs is not a descendant of base: find the longest common prefix
	// that ends at a separator boundary, then emit one "..\" for every
	// remaining segment of base, followed by the tail of abs.
	n := len(sAbs)
	if len(sBase) < n {
		n = len(sBase)
	}
	i := 0
	for i < n && toLower(sAbs[i]) == toLower(sBase[i]) {
		i++
	}
	for i > 2 && sBase[i-1] != '\\' && sBase[i-1] != '/' {
		i--
	}

	var b strings.Builder
	j := i
	for j <= len(sBase) {
		if j == len(sBase) || sBase[j] == '\\' || sBase[j] == '/' {
			b.WriteString(`..\`)
		}
		j++
	}
	b.WriteString(sAbs[i:])
	return b.String(), nil
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}
