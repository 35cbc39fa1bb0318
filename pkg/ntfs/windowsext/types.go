//go:build windows

// Package windowsext supplements golang.org/x/sys/windows with the NTFS
// reparse-point structures and constants that package does not expose:
// the generic REPARSE_DATA_BUFFER header, and the MOUNT_POINT flavor of
// its payload. The layout mirrors the FSCTL_{SET,GET}_REPARSE_POINT
// contract documented by the platform SDK (winioctl.h) and, field for
// field, the packed struct in the original libntlink's juncpoint.c.
package windowsext

const (
	IO_REPARSE_TAG_MOUNT_POINT = 0xA0000003
	IO_REPARSE_TAG_SYMLINK     = 0xA000000C

	FSCTL_SET_REPARSE_POINT    = 0x000900A4
	FSCTL_GET_REPARSE_POINT    = 0x000900A8
	FSCTL_DELETE_REPARSE_POINT = 0x000900AC

	// MAXIMUM_REPARSE_DATA_BUFFER_SIZE is the OS-enforced ceiling on the
	// size of any single reparse record; FSCTL_GET_REPARSE_POINT never
	// returns more than this.
	MAXIMUM_REPARSE_DATA_BUFFER_SIZE = 16 * 1024

	// REPARSE_GUID_DATA_BUFFER_HEADER_SIZE is the byte size of
	// REPARSE_DATA_BUFFER_HEADER: one u32 tag, one u16 length, one u16
	// reserved field. FSCTL_DELETE_REPARSE_POINT submits exactly this
	// many bytes and no payload.
	REPARSE_GUID_DATA_BUFFER_HEADER_SIZE = 8

	SYMLINK_FLAG_RELATIVE = 1
)

// REPARSE_DATA_BUFFER_HEADER is the fixed prefix shared by every reparse
// tag's payload.
type REPARSE_DATA_BUFFER_HEADER struct {
	ReparseTag        uint32
	ReparseDataLength uint16
	Reserved          uint16
}

// MountPointReparseBuffer is the IO_REPARSE_TAG_MOUNT_POINT payload that
// follows REPARSE_DATA_BUFFER_HEADER. SubstituteName is the unparseable
// NT path the filesystem redirects to; PrintName is what Explorer shows
// the user (left empty here, matching SetJuncPointW in the original
// sources, which never populates it).
type MountPointReparseBuffer struct {
	SubstituteNameOffset uint16
	SubstituteNameLength uint16
	PrintNameOffset      uint16
	PrintNameLength      uint16
	PathBuffer           [1]uint16
}

// SymbolicLinkReparseBuffer is the IO_REPARSE_TAG_SYMLINK payload, used
// when reading back a native NT symlink's target (as opposed to a
// MOUNT_POINT junction's).
type SymbolicLinkReparseBuffer struct {
	SubstituteNameOffset uint16
	SubstituteNameLength uint16
	PrintNameOffset      uint16
	PrintNameLength      uint16
	Flags                uint32
	PathBuffer           [1]uint16
}
