package ntfs

import (
	"io"

	"github.com/LRN/libntlink/pkg/path"
)

// RestoreFailure records one manifest record that Restore could not
// apply, and why.
type RestoreFailure struct {
	Record ManifestRecord
	Err    error
}

// RestoreResult summarizes a single Restore run.
type RestoreResult struct {
	Installed int
	Failed    []RestoreFailure
}

// Restore reads a manifest stream written by Backup and recreates each
// link it describes beneath baseDir, per §4.4.3.
//
// A manifest structural error - bad magic, a malformed length field, a
// missing terminator - stops the run immediately and is returned as the
// second result: once the stream's framing is lost, there is no safe
// way to locate the next record. A failure applying one otherwise
// well-formed record (its link path already exists, an ancestor is
// itself a reparse point, the underlying OS call fails) is recorded in
// RestoreResult.Failed and does not stop the run, matching §4.4.3 step
// 4's "errors on individual records do not abort the stream".
func Restore(baseDir string, r io.Reader) (RestoreResult, error) {
	registerMetrics()

	var result RestoreResult
	for {
		rec, err := DecodeManifestRecord(r)
		if err == io.EOF {
			return result, nil
		}
		if err != nil {
			return result, err
		}

		if ferr := restoreOne(baseDir, rec); ferr != nil {
			result.Failed = append(result.Failed, RestoreFailure{Record: rec, Err: ferr})
			restoreRecordsTotal.WithLabelValues("failed").Inc()
			continue
		}
		result.Installed++
		restoreRecordsTotal.WithLabelValues("installed").Inc()
	}
}

// restoreOne applies one manifest record: the link path must not yet
// exist and must have no reparse point among its ancestors (§4.4.3 step
// 2), then blind_link installs it (§4.3.5).
func restoreOne(baseDir string, rec ManifestRecord) error {
	kind, err := kindFromManifest(rec.Kind)
	if err != nil {
		return err
	}

	absLink, err := path.ToAbsolute(rec.Link, baseDir)
	if err != nil {
		return toErrno(err)
	}

	exists, _, err := Probe(absLink, ProbeDontFollowIntermediateSymlinks)
	if err != nil {
		return err
	}
	if exists {
		return errEexist("Restore target already exists: " + absLink)
	}

	return BlindLink(rec.Target, absLink, kind, baseDir)
}
