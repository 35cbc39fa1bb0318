//go:build !windows

package ntfs

func probeImpl(p string, flags ProbeFlags) (bool, LinkInfo, error) {
	return false, LinkInfo{}, errUnsupported()
}
