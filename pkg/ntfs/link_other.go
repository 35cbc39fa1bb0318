//go:build !windows

package ntfs

// CreateLink, and every other operation in this file, is unsupported
// outside Windows: MOUNT_POINT junctions and NT symlinks are an NTFS
// mechanism with no equivalent this package emulates elsewhere.
func CreateLink(target, linkName string) error {
	return errUnsupported()
}

func Hardlink(src, dst string) error {
	return errUnsupported()
}

func RemoveLink(p string) error {
	return errUnsupported()
}

func ReadLink(p string) (string, error) {
	return "", errUnsupported()
}

func StatLink(p string) (LinkInfo, error) {
	return LinkInfo{}, errUnsupported()
}

func ChownLink(p string, uid, gid int) error {
	return errEinval("chown_link is not supported")
}

func Rename(oldPath, newPath string) error {
	return errUnsupported()
}

func BlindLink(target, link string, kind Kind, baseDir string) error {
	return errUnsupported()
}
