//go:build windows

package ntfs

import (
	"strings"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
	"google.golang.org/grpc/codes"

	"github.com/LRN/libntlink/pkg/path"
)

// maxSymlinkHops bounds ProbeFollowLastSymlink's resolution chain;
// NTFS cannot materialize a self-looping reparse point, but a
// misconfigured tree of junctions pointing at each other can still
// diverge in practice, so the design calls for a hard cap (§4.2).
const maxSymlinkHops = 32

func attributesOf(p string) (LinkInfo, error) {
	var data windows.Win32FileAttributeData
	if err := windows.GetFileAttributesEx(utf16Ptr(p), windows.GetFileExInfoStandard, (*byte)(unsafe.Pointer(&data))); err != nil {
		return LinkInfo{}, err
	}

	isDir := data.FileAttributes&windows.FILE_ATTRIBUTE_DIRECTORY != 0

	kind := KindRegularFile
	switch {
	case data.FileAttributes&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0:
		kind = KindUnknownReparse
	case isDir:
		kind = KindDirectory
	}

	mode := modeFor(kind)
	if kind == KindUnknownReparse && isDir {
		// attributesOf can't yet tell a directory-flavored reparse
		// point (junction, directory symlink) from a file-flavored one
		// (file symlink) - that needs StatLink's tag read - but the
		// directory attribute bit is already known, so Mode reflects it
		// here rather than waiting for the concrete kind.
		mode = (mode &^ ModeRegular) | ModeDir
	}

	return LinkInfo{
		Kind:           kind,
		SizeBytes:      int64(data.FileSizeHigh)<<32 | int64(data.FileSizeLow),
		CreationTime:   time.Unix(0, data.CreationTime.Nanoseconds()),
		LastAccessTime: time.Unix(0, data.LastAccessTime.Nanoseconds()),
		LastWriteTime:  time.Unix(0, data.LastWriteTime.Nanoseconds()),
		Mode:           mode,
	}, nil
}

func isNotExistErr(err error) bool {
	return err == windows.ERROR_FILE_NOT_FOUND || err == windows.ERROR_PATH_NOT_FOUND
}

func probeImpl(p string, flags ProbeFlags) (bool, LinkInfo, error) {
	if flags&ProbeDontFollowIntermediateSymlinks != 0 {
		abs, err := path.ToAbsolute(p, "")
		if err != nil {
			return false, LinkInfo{}, toErrno(err)
		}
		hasReparseAncestor, err := path.ContainsReparseAncestor(abs, ReparseProbe)
		if err != nil {
			return false, LinkInfo{}, toErrno(err)
		}
		if hasReparseAncestor {
			return false, LinkInfo{}, errEinval("Intermediate path component of " + p + " is a reparse point")
		}
	}

	info, err := attributesOf(p)
	if err != nil {
		if isNotExistErr(err) {
			return false, LinkInfo{}, nil
		}
		return false, LinkInfo{}, wrapOSError(err, codes.Unknown, "Failed to query attributes for "+p)
	}

	if flags&ProbeFollowLastSymlink != 0 && info.Kind == KindUnknownReparse {
		resolved, rerr := followLastSymlink(p, info, 0)
		if rerr != nil {
			return false, LinkInfo{}, rerr
		}
		return true, resolved, nil
	}

	return true, info, nil
}

// followLastSymlink implements FOLLOW_LAST_SYMLINK (§4.2): it repeatedly
// reads p's own link target and re-probes it, resolving relative
// targets against p's directory and replacing the probe path wholesale
// for absolute ones, until the chain reaches a non-link, a path that
// resolves to itself, or a missing target. A target that ReadLink
// reports as "not a link" (EINVAL) ends the chain at the current info,
// matching the design's "recurse once with the flag cleared" rule -
// there is nothing further to read once a non-reparse object is
// reached, so no further recursion is needed.
func followLastSymlink(p string, info LinkInfo, hops int) (LinkInfo, error) {
	if hops >= maxSymlinkHops {
		return LinkInfo{}, errEio("Too many levels of link indirection resolving " + p)
	}

	target, err := ReadLink(p)
	if err != nil {
		return info, nil
	}
	target = stripUnparseablePrefix(target)

	nextPath := target
	if !path.IsAbsolute(target) {
		dir := dirOf(p)
		nextPath, err = path.ToAbsolute(target, dir)
		if err != nil {
			return LinkInfo{}, toErrno(err)
		}
	}

	if pathsEqual(nextPath, p) {
		return info, nil
	}

	exists, nextInfo, err := probeImpl(nextPath, ProbeNone)
	if err != nil {
		return LinkInfo{}, err
	}
	if !exists {
		return info, nil
	}
	if nextInfo.Kind != KindUnknownReparse {
		return nextInfo, nil
	}
	return followLastSymlink(nextPath, nextInfo, hops+1)
}

// dirOf returns p's parent directory, the way relative symlink targets
// are resolved: against "the directory of the current probe target"
// (§4.2), not against the overall walk's base directory.
func dirOf(p string) string {
	trimmed := strings.TrimRight(p, `\/`)
	idx := strings.LastIndexAny(trimmed, `\/`)
	if idx < 0 {
		return p
	}
	if idx < 2 {
		return trimmed[:idx+1]
	}
	return trimmed[:idx]
}

func pathsEqual(a, b string) bool {
	ca, errA := path.Canonicalize(a, true)
	cb, errB := path.Canonicalize(b, true)
	if errA != nil || errB != nil {
		return a == b
	}
	return ca == cb
}
