// Package ntfs implements the reparse-point engine and the unified
// create_link/read_link/remove_link/stat_link/rename surface described
// by libntlink's design: it dispatches between MOUNT_POINT junctions,
// hardlinks, and native NT symlinks depending on what the target is and
// what the host OS offers, and provides the tree walker and manifest
// codec used to back up and restore a link topology.
//
// Everything in this package except pkg/ntfs/windowsext and the
// platform-specific *_windows.go files operates on the abstract Kind
// and LinkInfo records below, so that backup, restore and manifest
// handling need no build tags of their own.
package ntfs

import "time"

// Kind classifies what a path names, mirroring the mode bits the
// original source synthesizes into struct stat's st_mode (_S_IFDIR,
// _S_IFREG, _S_IFLNK, and the source's own extension bit _S_IFJUN).
type Kind int

const (
	KindUnknown Kind = iota
	KindRegularFile
	KindDirectory
	KindFileSymlink
	KindDirectorySymlink
	KindJunction
	KindUnknownReparse
)

func (k Kind) String() string {
	switch k {
	case KindRegularFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindFileSymlink:
		return "file-symlink"
	case KindDirectorySymlink:
		return "directory-symlink"
	case KindJunction:
		return "junction"
	case KindUnknownReparse:
		return "unknown-reparse"
	default:
		return "unknown"
	}
}

// IsLink reports whether k is one of the three link flavors the
// manifest format can describe (file-symlink, directory-symlink,
// junction) - as opposed to a plain file, a plain directory, or a
// reparse point of a tag this package doesn't understand.
func (k Kind) IsLink() bool {
	switch k {
	case KindFileSymlink, KindDirectorySymlink, KindJunction:
		return true
	default:
		return false
	}
}

// Mode bits, named after the source's synthesized st_mode constants.
// The link operations test ModeDir to tell a directory from a file;
// the other bits are informational.
const (
	ModeDir      = 1 << 14 // _S_IFDIR
	ModeRegular  = 1 << 15 // _S_IFREG
	ModeSymlink  = 1 << 16 // _S_IFLNK (no POSIX standard bit on Windows; source-defined)
	ModeJunction = 1 << 17 // _S_IFJUN (source extension, no POSIX equivalent)
)

// LinkInfo is the abstract metadata record produced by StatLink: the
// Go analogue of libntlink's struct stat, stripped to the fields this
// system actually needs (§3.3 of the design).
type LinkInfo struct {
	Kind Kind

	// LinkCount is the number of directory entries referring to the
	// same underlying file record (>= 1 as filled by StatLink; Probe
	// leaves it 0).
	LinkCount uint32

	// SizeBytes is the file's data size; 0 for directories, junctions
	// and symlinks, for which it carries no meaning.
	SizeBytes int64

	// VolumeID and FileIndex together identify the underlying object:
	// two paths with equal (VolumeID, FileIndex) and a non-zero
	// FileIndex denote the same file, regardless of the path used to
	// reach it. Rename's same-file short-circuit depends on this.
	VolumeID  uint32
	FileIndex uint64

	CreationTime   time.Time
	LastAccessTime time.Time
	LastWriteTime  time.Time

	// Mode mirrors the source's synthesized st_mode: exactly one of
	// ModeDir / ModeRegular is set, OR'd with ModeSymlink or
	// ModeJunction when Kind is one of the link flavors.
	Mode uint32
}

// SameFile reports whether a and b denote the same underlying file
// record, the way ntlink_renamew's same-(ino,dev) pair check does: a
// non-zero FileIndex must match on both sides.
func SameFile(a, b LinkInfo) bool {
	return a.FileIndex != 0 && a.FileIndex == b.FileIndex && a.VolumeID == b.VolumeID
}

func modeFor(kind Kind) uint32 {
	var m uint32
	switch kind {
	case KindDirectory, KindDirectorySymlink, KindJunction:
		m |= ModeDir
	default:
		m |= ModeRegular
	}
	switch kind {
	case KindJunction:
		m |= ModeJunction
	case KindFileSymlink, KindDirectorySymlink:
		m |= ModeSymlink
	}
	return m
}
