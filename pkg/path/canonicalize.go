package path

import "strings"

// Canonicalize collapses doubled separators, "." segments and ".."
// segments out of an absolute path, the way NTFS does: "C:\..\" stays
// "C:\" rather than escaping the drive root. If normalizeSeparators is
// set, every "/" in the result is replaced with "\" once the three
// collapsing passes are done.
//
// This is a direct port of SimplifyAbsNameW from the original C
// sources: three independent passes (doubled separators, "\.\",
// "\name\..\"), each restarting its scan from index 2 whenever it
// mutates the string, so that interactions between the three rules
// (e.g. "\.\..\ " producing a fresh doubled separator) are resolved
// correctly even though no single pass sees the others' output ahead
// of time. Index 2 is where the scan restarts because index 0-1 is the
// drive letter and colon ("X:"), which canonicalization must never
// touch.
func Canonicalize(p string, normalizeSeparators bool) (string, error) {
	if len(p) <= 3 {
		if normalizeSeparators {
			return strings.ReplaceAll(p, "/", `\`), nil
		}
		return p, nil
	}

	b := []byte(p)

	// Pass 1: collapse every adjacent pair of separators into one.
	for i := 2; i < len(b)-1; {
		if isSep(b[i]) && isSep(b[i+1]) {
			b = append(b[:i], b[i+1:]...)
			i = 2
			continue
		}
		i++
	}

	// Pass 2: collapse every "\.\" (and the terminal "\." form) into "\".
	// The separator that follows the "." (or the end of string) is left
	// in place; only the separator-dot pair is removed.
	for i := 2; i < len(b)-1; {
		if isSep(b[i]) && b[i+1] == '.' && (i+2 >= len(b) || isSep(b[i+2])) {
			b = append(b[:i], b[i+2:]...)
			i = 2
			continue
		}
		i++
	}

	// Pass 3: collapse every "\name\..\" into "\", eliminating a ".."
	// at the drive root instead of hoisting it above "X:\". k is the
	// separator preceding "name"; the range [k, i+3) - the separator,
	// "name", the separator before "..", and ".." itself - is removed,
	// leaving whatever followed the trailing separator (or nothing) in
	// its place.
	for i := 2; i < len(b)-2; {
		if isSep(b[i]) && b[i+1] == '.' && b[i+2] == '.' && (i+3 >= len(b) || isSep(b[i+3])) {
			k := i
			if k-1 > 2 {
				k--
			} else {
				k = 3
			}
			for k > 2 && !isSep(b[k]) {
				k--
			}
			b = append(b[:k], b[i+3:]...)
			i = 2
			continue
		}
		i++
	}

	if len(b) == 2 {
		// Degenerated down to "X:"; restore the drive-root separator.
		b = append(b, '\\')
	}

	out := string(b)
	if normalizeSeparators {
		out = strings.ReplaceAll(out, "/", `\`)
	}
	return out, nil
}

func isSep(c byte) bool {
	return c == '\\' || c == '/'
}
