package path

import (
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ProbeFunc reports whether the path p names a reparse point (a mount
// point, junction, or native symlink), without following it. It is the
// single point of contact between this package's pure string algebra
// and the operating system; package ntfs supplies the real
// Windows-backed implementation, and tests supply hand-written fakes.
type ProbeFunc func(p string) (bool, error)

// ContainsReparseAncestor reports whether any proper ancestor directory
// of abs (not abs itself) is a reparse point, walking upward from abs
// towards the drive root and calling probe on each candidate in turn.
// It stops and returns true on the first ancestor probe reports as a
// reparse point, and stops and returns the error on the first probe
// that fails outright (a missing intermediate directory is reported by
// probe as "not a reparse point, no error", not as a failure here).
//
// abs must already be absolute and canonical; callers normally obtain
// it from ToAbsolute.
func ContainsReparseAncestor(abs string, probe ProbeFunc) (bool, error) {
	if !IsAbsolute(abs) {
		return false, status.Error(codes.InvalidArgument, "Path is not absolute")
	}

	parent := parentOf(abs)
	for parent != "" {
		isReparse, err := probe(parent)
		if err != nil {
			return false, err
		}
		if isReparse {
			return true, nil
		}
		next := parentOf(parent)
		if next == parent {
			break
		}
		parent = next
	}
	return false, nil
}

// parentOf returns the parent directory of p, or "" once p has been
// reduced to a bare drive root ("X:\") or a bare leading "\\". A UNC
// path therefore climbs through "\\server" and "\\" before ending.
func parentOf(p string) string {
	trimmed := strings.TrimRight(p, `\/`)
	if len(trimmed) <= 2 {
		// "X:" - already at the drive root.
		return ""
	}
	idx := strings.LastIndexAny(trimmed, `\/`)
	if idx < 0 {
		return ""
	}
	if idx < 2 {
		// Only leading separators precede the last segment; keep them,
		// e.g. "\\" from "\\server".
		return trimmed[:idx+1]
	}
	if idx == 2 && (trimmed[1] == ':') {
		return trimmed[:3]
	}
	return trimmed[:idx]
}
