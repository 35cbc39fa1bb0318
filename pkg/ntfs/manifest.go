package ntfs

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf16"
)

// ManifestKind is the single-character tag a manifest record uses to
// name what kind of link it describes, per §3.5/§6.3.
type ManifestKind uint16

const (
	ManifestKindDirectorySymlink ManifestKind = 'd'
	ManifestKindFileSymlink      ManifestKind = 'f'
	ManifestKindJunction         ManifestKind = 'j'
)

func kindFromManifest(k ManifestKind) (Kind, error) {
	switch k {
	case ManifestKindDirectorySymlink:
		return KindDirectorySymlink, nil
	case ManifestKindFileSymlink:
		return KindFileSymlink, nil
	case ManifestKindJunction:
		return KindJunction, nil
	default:
		return KindUnknown, errEinval(fmt.Sprintf("Unknown manifest record kind %q", rune(k)))
	}
}

func manifestKindFor(k Kind) (ManifestKind, bool) {
	switch k {
	case KindDirectorySymlink:
		return ManifestKindDirectorySymlink, true
	case KindFileSymlink:
		return ManifestKindFileSymlink, true
	case KindJunction:
		return ManifestKindJunction, true
	default:
		return 0, false
	}
}

// ManifestRecord is one parsed "link" line: a link path, the raw target
// it pointed at, and what flavor of link it was, per §3.5.
type ManifestRecord struct {
	Kind   ManifestKind
	Link   string
	Target string
}

var manifestMagic = utf16.Encode([]rune("link "))

// EncodeManifestRecord appends one record to w in the stream's native
// UTF-16 code-unit encoding - one uint16 per code unit, little-endian,
// the way the original sources' wchar_t-based manifest writer laid a
// record out byte for byte. The grammar is "link " kind " " linklen " "
// link-path " " targetlen " " target-path "\n", per §3.5/§6.3.
func EncodeManifestRecord(w io.Writer, rec ManifestRecord) error {
	linkUnits := utf16.Encode([]rune(rec.Link))
	targetUnits := utf16.Encode([]rune(rec.Target))

	line := make([]uint16, 0, len(manifestMagic)+2+2+len(linkUnits)+2+len(targetUnits)+2)
	line = append(line, manifestMagic...)
	line = append(line, uint16(rec.Kind), ' ')
	line = append(line, utf16.Encode([]rune(fmt.Sprintf("%d", len(linkUnits))))...)
	line = append(line, ' ')
	line = append(line, linkUnits...)
	line = append(line, ' ')
	line = append(line, utf16.Encode([]rune(fmt.Sprintf("%d", len(targetUnits))))...)
	line = append(line, ' ')
	line = append(line, targetUnits...)
	line = append(line, '\n')

	return binary.Write(w, binary.LittleEndian, line)
}

func readUnit(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func readUnits(r io.Reader, n int) ([]uint16, error) {
	units := make([]uint16, n)
	for i := range units {
		u, err := readUnit(r)
		if err != nil {
			return nil, err
		}
		units[i] = u
	}
	return units, nil
}

func expectUnit(r io.Reader, want uint16, what string) error {
	u, err := readUnit(r)
	if err != nil {
		return errEinval("Truncated manifest record: expected " + what)
	}
	if u != want {
		return errEinval("Malformed manifest record: expected " + what)
	}
	return nil
}

// readDecimalLength reads a run of ASCII decimal digit code units up to
// (but not including) the next space, accumulating the corrected way:
// length = length*10 + digit. The original sources compute
// linklen = linklen*(10*i) + digit across the loop instead, which is
// almost certainly an off-by-logic bug (see DESIGN.md) - not reproduced
// here. A bare "0" is accepted as a valid zero-length field, matching
// the testable boundary in §8; an entirely empty field (bumping
// straight into the delimiter) is rejected.
func readDecimalLength(r io.Reader) (int, error) {
	length := 0
	digits := 0
	for {
		u, err := readUnit(r)
		if err != nil {
			return 0, errEinval("Truncated manifest length field")
		}
		if u == ' ' {
			if digits == 0 {
				return 0, errEinval("Manifest length field is empty")
			}
			return length, nil
		}
		if u < '0' || u > '9' {
			return 0, errEinval("Manifest length field is not a decimal number")
		}
		length = length*10 + int(u-'0')
		digits++
	}
}

// DecodeManifestRecord reads exactly one "link" record from r. A clean
// end of stream before any code unit of the "link " magic is read is
// reported as io.EOF; any other structural deviation is a malformed
// record error, per §3.5.
func DecodeManifestRecord(r io.Reader) (ManifestRecord, error) {
	for i := range manifestMagic {
		u, err := readUnit(r)
		if err != nil {
			if i == 0 && err == io.EOF {
				return ManifestRecord{}, io.EOF
			}
			return ManifestRecord{}, errEinval("Truncated manifest magic")
		}
		if u != manifestMagic[i] {
			return ManifestRecord{}, errEinval("Manifest magic mismatch")
		}
	}

	kindUnit, err := readUnit(r)
	if err != nil {
		return ManifestRecord{}, errEinval("Truncated manifest record kind")
	}
	if err := expectUnit(r, ' ', "space after kind"); err != nil {
		return ManifestRecord{}, err
	}

	linkLen, err := readDecimalLength(r)
	if err != nil {
		return ManifestRecord{}, err
	}
	linkUnits, err := readUnits(r, linkLen)
	if err != nil {
		return ManifestRecord{}, errEinval("Truncated manifest link path")
	}
	if err := expectUnit(r, ' ', "space after link path"); err != nil {
		return ManifestRecord{}, err
	}

	targetLen, err := readDecimalLength(r)
	if err != nil {
		return ManifestRecord{}, err
	}
	targetUnits, err := readUnits(r, targetLen)
	if err != nil {
		return ManifestRecord{}, errEinval("Truncated manifest target path")
	}
	if err := expectUnit(r, '\n', "newline terminator"); err != nil {
		return ManifestRecord{}, err
	}

	// An unrecognized kind byte does not break the stream's framing -
	// magic, lengths and terminator all parsed cleanly - so it is left
	// for the caller to reject per-record (restoreOne does, via
	// kindFromManifest) rather than aborting the whole decode here.
	return ManifestRecord{
		Kind:   ManifestKind(kindUnit),
		Link:   string(utf16.Decode(linkUnits)),
		Target: string(utf16.Decode(targetUnits)),
	}, nil
}
