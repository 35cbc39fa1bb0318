//go:build windows

package ntfs

import (
	"unsafe"

	"golang.org/x/sys/windows"
	"google.golang.org/grpc/codes"

	"github.com/LRN/libntlink/pkg/ntfs/windowsext"
)

// unparseablePrefix is the NT object-namespace prefix a MOUNT_POINT's
// SubstituteName must carry to name a local path.
const unparseablePrefix = `\??\`

func stripUnparseablePrefix(s string) string {
	if len(s) >= len(unparseablePrefix) && s[:len(unparseablePrefix)] == unparseablePrefix {
		return s[len(unparseablePrefix):]
	}
	return s
}

// setJunction installs target (which must already carry the \??\
// prefix) as link's MOUNT_POINT reparse target, per §4.3.1. If link
// does not exist it is created as an empty directory; if it already
// exists as a junction, it is retargeted.
//
// This is a direct port of SetJuncPointW in the original sources: the
// buffer-size formula in the comment there is preserved exactly
// (ReparseDataLength = sizeof(MountPointReparseBuffer) -
// sizeof(PathBuffer) + (substituteLen+1+printLen+1)*sizeof(wchar_t)),
// with PrintName always left empty.
func setJunction(target, link string) (err error) {
	var existing windows.Win32FileAttributeData
	if statErr := windows.GetFileAttributesEx(utf16Ptr(link), windows.GetFileExInfoStandard, (*byte)(unsafe.Pointer(&existing))); statErr != nil {
		if mkErr := windows.CreateDirectory(utf16Ptr(link), nil); mkErr != nil {
			return wrapOSError(mkErr, codes.PermissionDenied, "Failed to create directory for junction "+link)
		}
	}

	handle, err := windows.CreateFile(
		utf16Ptr(link),
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0,
		nil,
		windows.OPEN_ALWAYS,
		windows.FILE_FLAG_BACKUP_SEMANTICS|windows.FILE_FLAG_OPEN_REPARSE_POINT,
		0)
	if err != nil {
		return wrapOSError(err, codes.PermissionDenied, "Failed to open "+link+" for junction install")
	}
	defer windows.CloseHandle(handle)

	targetUTF16, err := windows.UTF16FromString(target)
	if err != nil {
		return errEinval("Junction target is not a valid path: " + target)
	}
	substituteLen := len(targetUTF16) - 1 // exclude NUL

	const fixedHeader = int(unsafe.Sizeof(windowsext.REPARSE_DATA_BUFFER_HEADER{}))
	const mountFields = int(unsafe.Sizeof(windowsext.MountPointReparseBuffer{})) - 2 // minus the 1-uint16 PathBuffer placeholder

	payloadBytes := (substituteLen + 1 + 0 + 1) * 2
	bufSize := fixedHeader + mountFields + payloadBytes
	buf := make([]byte, bufSize)

	header := (*windowsext.REPARSE_DATA_BUFFER_HEADER)(unsafe.Pointer(&buf[0]))
	header.ReparseTag = windowsext.IO_REPARSE_TAG_MOUNT_POINT
	header.ReparseDataLength = uint16(mountFields + payloadBytes)
	header.Reserved = 0

	mount := (*windowsext.MountPointReparseBuffer)(unsafe.Pointer(&buf[fixedHeader]))
	mount.SubstituteNameOffset = 0
	mount.SubstituteNameLength = uint16(substituteLen * 2)
	mount.PrintNameOffset = uint16((substituteLen + 1) * 2)
	mount.PrintNameLength = 0

	pathBuffer := unsafe.Pointer(&mount.PathBuffer[0])
	pathSlice := unsafe.Slice((*uint16)(pathBuffer), substituteLen+1+1)
	copy(pathSlice[:substituteLen+1], targetUTF16)
	pathSlice[substituteLen+1] = 0

	var returned uint32
	if ioErr := windows.DeviceIoControl(handle, windowsext.FSCTL_SET_REPARSE_POINT, &buf[0], uint32(bufSize), nil, 0, &returned, nil); ioErr != nil {
		return wrapOSError(ioErr, codes.Unknown, "Failed to install junction reparse point on "+link)
	}
	return nil
}

// readReparseBuffer opens path with OPEN_REPARSE_POINT (so the reparse
// is read, not followed) and returns its ReparseTag along with the
// SubstituteName carried by either reparse flavor this package
// understands (MOUNT_POINT or SYMLINK), with any \??\ prefix intact.
// Used by both ReadLink (§4.3.4) and StatLink's junction/symlink
// sub-classification (§4.3.4).
func readReparseBuffer(p string, isDir bool) (tag uint32, substituteName string, err error) {
	flags := uint32(windows.FILE_FLAG_OPEN_REPARSE_POINT)
	if isDir {
		flags |= windows.FILE_FLAG_BACKUP_SEMANTICS
	}
	handle, err := windows.CreateFile(
		utf16Ptr(p),
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		flags,
		0)
	if err != nil {
		return 0, "", wrapOSError(err, codes.PermissionDenied, "Failed to open "+p+" to read reparse point")
	}
	defer windows.CloseHandle(handle)

	staging := make([]byte, windowsext.MAXIMUM_REPARSE_DATA_BUFFER_SIZE)
	var returned uint32
	if ioErr := windows.DeviceIoControl(handle, windowsext.FSCTL_GET_REPARSE_POINT, nil, 0, &staging[0], uint32(len(staging)), &returned, nil); ioErr != nil {
		return 0, "", wrapOSError(ioErr, codes.InvalidArgument, p+" is not a reparse point")
	}

	header := (*windowsext.REPARSE_DATA_BUFFER_HEADER)(unsafe.Pointer(&staging[0]))
	fixedHeader := int(unsafe.Sizeof(windowsext.REPARSE_DATA_BUFFER_HEADER{}))

	var nameOffset, nameLength uint16
	switch header.ReparseTag {
	case windowsext.IO_REPARSE_TAG_MOUNT_POINT:
		mount := (*windowsext.MountPointReparseBuffer)(unsafe.Pointer(&staging[fixedHeader]))
		nameOffset, nameLength = mount.SubstituteNameOffset, mount.SubstituteNameLength
		fixedHeader += int(unsafe.Offsetof(mount.PathBuffer))
	case windowsext.IO_REPARSE_TAG_SYMLINK:
		sym := (*windowsext.SymbolicLinkReparseBuffer)(unsafe.Pointer(&staging[fixedHeader]))
		nameOffset, nameLength = sym.SubstituteNameOffset, sym.SubstituteNameLength
		fixedHeader += int(unsafe.Offsetof(sym.PathBuffer))
	default:
		return header.ReparseTag, "", errEinval(p + " carries an unrecognized reparse tag")
	}

	if nameLength == 0 {
		return header.ReparseTag, "", nil
	}

	nameBytes := unsafe.Slice((*byte)(unsafe.Pointer(&staging[fixedHeader])), int(nameOffset)+int(nameLength))
	substitute := nameBytes[nameOffset:]
	units := unsafe.Slice((*uint16)(unsafe.Pointer(&substitute[0])), len(substitute)/2)
	return header.ReparseTag, windows.UTF16ToString(units), nil
}

// deleteJunction removes the MOUNT_POINT reparse record from link,
// leaving it behind as an empty directory, per §4.3.3.
func deleteJunction(link string) error {
	handle, err := windows.CreateFile(
		utf16Ptr(link),
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS|windows.FILE_FLAG_OPEN_REPARSE_POINT,
		0)
	if err != nil {
		return wrapOSError(err, codes.PermissionDenied, "Failed to open "+link+" to delete junction")
	}
	defer windows.CloseHandle(handle)

	var header windowsext.REPARSE_DATA_BUFFER_HEADER
	header.ReparseTag = windowsext.IO_REPARSE_TAG_MOUNT_POINT
	header.ReparseDataLength = 0

	var returned uint32
	if ioErr := windows.DeviceIoControl(
		handle,
		windowsext.FSCTL_DELETE_REPARSE_POINT,
		(*byte)(unsafe.Pointer(&header)),
		windowsext.REPARSE_GUID_DATA_BUFFER_HEADER_SIZE,
		nil, 0, &returned, nil); ioErr != nil {
		return wrapOSError(ioErr, codes.Unknown, "Failed to delete junction reparse point on "+link)
	}
	return nil
}

func utf16Ptr(s string) *uint16 {
	p, err := windows.UTF16PtrFromString(s)
	if err != nil {
		// s contains an embedded NUL; every caller here already built
		// it from a validated path, so this can only mean caller error.
		return nil
	}
	return p
}
