package ntfs

import (
	"io"
	"os"
	"path/filepath"

	"google.golang.org/grpc/codes"

	"github.com/LRN/libntlink/pkg/path"
)

// BackupOptions controls a single Backup run, per §4.4.1.
type BackupOptions struct {
	// Dry, when set, records each discovered link in the manifest but
	// leaves it in place on disk rather than removing it.
	Dry bool

	// Recursive, when set and name names a plain directory (not a
	// link), walks its children and recurses into each one. Without it,
	// a plain directory is a no-op: only name itself is ever inspected.
	Recursive bool

	// Reljunc relativizes a junction's (absolute) target against
	// baseDir before it is written to the manifest, instead of the
	// literal absolute target read_link returned.
	Reljunc bool
}

// Backup resolves name (absolute, or relative to baseDir) under baseDir
// and writes manifest records for every link found at or beneath it, per
// §4.4.1.
//
// A name that does not exist is treated as already backed up: Backup
// returns success with nothing written, matching the idempotence
// called out in §4.4.1 step 2. A name that is itself a link emits one
// record and (unless opts.Dry) removes it. A name that is a plain
// directory is otherwise left untouched unless opts.Recursive is set,
// in which case its children are walked one level at a time - via
// Walk's breadth-first mode - and Backup recurses into each one,
// explicitly, the way the original sources drive their own recursion
// over the generic tree walker rather than asking it to descend
// unsupervised.
func Backup(baseDir, name string, opts BackupOptions, w io.Writer) error {
	registerMetrics()

	absName, err := path.ToAbsolute(name, baseDir)
	if err != nil {
		return toErrno(err)
	}

	exists, info, err := Probe(absName, ProbeNone)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	// Probe(ProbeNone) only ever reports a reparse point as
	// KindUnknownReparse; stat_link it to learn which concrete flavor
	// (junction, file-symlink, directory-symlink) it actually is, per
	// §4.4.1's "stat_link it" step.
	kind := info.Kind
	if kind == KindUnknownReparse {
		linkInfo, err := StatLink(absName)
		if err != nil {
			return err
		}
		kind = linkInfo.Kind
	}

	if kind.IsLink() {
		return backupLink(baseDir, absName, kind, opts, w)
	}

	if kind != KindDirectory || !opts.Recursive {
		return nil
	}

	return Walk(absName, WalkBreadthFirstOnce, func(dir string, entries []os.DirEntry) error {
		for _, entry := range entries {
			if err := Backup(baseDir, filepath.Join(dir, entry.Name()), opts, w); err != nil {
				return err
			}
		}
		return nil
	})
}

func backupLink(baseDir, absLink string, kind Kind, opts BackupOptions, w io.Writer) error {
	mk, ok := manifestKindFor(kind)
	if !ok {
		return errEinval("Unrecognized link kind for " + absLink)
	}

	relLink, err := path.ToRelative(absLink, baseDir)
	if err != nil {
		return toErrno(err)
	}

	target, err := ReadLink(absLink)
	if err != nil {
		return err
	}
	target = stripUnparseablePrefix(target)

	if kind == KindJunction && opts.Reljunc {
		if relTarget, err := path.ToRelative(target, baseDir); err == nil {
			target = relTarget
		}
	}

	if err := EncodeManifestRecord(w, ManifestRecord{Kind: mk, Link: relLink, Target: target}); err != nil {
		return wrapOSError(err, codes.Unknown, "Failed to write manifest record for "+absLink)
	}
	backupRecordsWrittenTotal.Inc()

	if !opts.Dry {
		if err := RemoveLink(absLink); err != nil {
			return err
		}
	}
	return nil
}
