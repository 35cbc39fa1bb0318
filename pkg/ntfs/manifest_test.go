package ntfs

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManifestRecordRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []ManifestRecord{
		{Kind: ManifestKindJunction, Link: `x`, Target: `C:\t\y`},
		{Kind: ManifestKindDirectorySymlink, Link: `a\b\c`, Target: `..\d`},
		{Kind: ManifestKindFileSymlink, Link: ``, Target: ``},
	}

	for _, rec := range cases {
		var buf bytes.Buffer
		require.NoError(t, EncodeManifestRecord(&buf, rec))

		got, err := DecodeManifestRecord(&buf)
		require.NoError(t, err)
		require.Equal(t, rec, got)
	}
}

func TestManifestMultipleRecords(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	want := []ManifestRecord{
		{Kind: ManifestKindJunction, Link: `x`, Target: `C:\t\y`},
		{Kind: ManifestKindFileSymlink, Link: `file`, Target: `other`},
	}
	for _, rec := range want {
		require.NoError(t, EncodeManifestRecord(&buf, rec))
	}

	var got []ManifestRecord
	for {
		rec, err := DecodeManifestRecord(&buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, rec)
	}
	require.Equal(t, want, got)
}

func TestDecodeManifestRecordEmptyStreamIsEOF(t *testing.T) {
	t.Parallel()

	_, err := DecodeManifestRecord(bytes.NewReader(nil))
	require.ErrorIs(t, err, io.EOF)
}

func TestDecodeManifestRecordMalformed(t *testing.T) {
	t.Parallel()

	cases := map[string][]uint16{
		"bad magic": append([]uint16{}, utf16Units("xxxx ")...),
		"truncated after kind": append(append([]uint16{}, utf16Units("link ")...), 'j'),
		"bad length digit": append(append([]uint16{}, utf16Units("link j ")...), 'x', ' '),
	}

	for name, units := range cases {
		units := units
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeManifestRecord(bytes.NewReader(unitsToLEBytes(units)))
			require.Error(t, err)
		})
	}
}

func TestDecodeManifestRecordUnrecognizedKindIsNotStructural(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, EncodeManifestRecord(&buf, ManifestRecord{Kind: ManifestKind('x'), Link: "a", Target: "b"}))

	rec, err := DecodeManifestRecord(&buf)
	require.NoError(t, err)
	require.Equal(t, ManifestKind('x'), rec.Kind)

	_, err = kindFromManifest(rec.Kind)
	require.Error(t, err)
}

func TestReadDecimalLengthAcceptsZero(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, EncodeManifestRecord(&buf, ManifestRecord{Kind: ManifestKindFileSymlink}))

	rec, err := DecodeManifestRecord(&buf)
	require.NoError(t, err)
	require.Equal(t, "", rec.Link)
	require.Equal(t, "", rec.Target)
}

func utf16Units(s string) []uint16 {
	units := make([]uint16, len(s))
	for i, r := range s {
		units[i] = uint16(r)
	}
	return units
}

func unitsToLEBytes(units []uint16) []byte {
	b := make([]byte, len(units)*2)
	for i, u := range units {
		b[2*i] = byte(u)
		b[2*i+1] = byte(u >> 8)
	}
	return b
}
