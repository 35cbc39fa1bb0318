package ntfs

// ProbeFlags controls how Probe classifies a path, mirroring the
// DONT_FOLLOW_INTERMEDIATE_SYMLINKS / FOLLOW_LAST_SYMLINK flags from
// the design's metadata-probe component (C2, §4.2).
type ProbeFlags uint32

const (
	ProbeNone ProbeFlags = 0

	// ProbeDontFollowIntermediateSymlinks makes Probe fail with EINVAL
	// if any proper ancestor of path is itself a reparse point. It does
	// not affect whether path itself, if it is a reparse point, gets
	// followed.
	ProbeDontFollowIntermediateSymlinks ProbeFlags = 1 << iota

	// ProbeFollowLastSymlink makes Probe repeatedly resolve path's own
	// link target (not its ancestors') until it reaches a non-link, a
	// self-reference, or a missing target, capped at maxSymlinkHops.
	ProbeFollowLastSymlink
)

// Probe answers whether path exists and, if so, what kind of object it
// names, per §4.2 of the design. See probe_windows.go for the
// Windows-backed implementation; non-Windows builds always fail with an
// unsupported-platform error (see probe_other.go).
func Probe(path string, flags ProbeFlags) (bool, LinkInfo, error) {
	return probeImpl(path, flags)
}

// ReparseProbe adapts Probe to pkg/path's ProbeFunc signature, for use
// with path.ContainsReparseAncestor: it reports whether path exists and
// is itself a reparse point of any flavor. A path that does not exist,
// or that fails to probe for any other reason, is reported as "not a
// reparse point" rather than propagating the error - this function's
// one call site (ProbeDontFollowIntermediateSymlinks) only needs to
// know about reparse points it can actually see; a missing or
// inaccessible ancestor will already fail the probe that invoked it, by
// a different path, if it matters.
func ReparseProbe(p string) (bool, error) {
	exists, info, err := Probe(p, ProbeNone)
	if err != nil || !exists {
		return false, nil
	}
	return info.Kind == KindJunction ||
		info.Kind == KindFileSymlink ||
		info.Kind == KindDirectorySymlink ||
		info.Kind == KindUnknownReparse, nil
}
