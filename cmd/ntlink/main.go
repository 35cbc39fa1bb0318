// Command ntlink backs up and restores a tree's NTFS junctions and
// symlinks to and from a textual manifest, per spec.md §6.4:
//
//	ntlink <b|r> <base_dir> <name> [r] [d] [j] [f <file>]
//
// b runs a backup rooted at base_dir, recording (and by default
// removing) the link named by name; r runs a restore of a manifest onto
// base_dir. Flags: r = recursive, d = dry-run, j = relativize junction
// targets in the manifest, f <file> = read/write the manifest from a
// file instead of stdin/stdout.
package main

import (
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/LRN/libntlink/pkg/ntfs"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	runID := uuid.New().String()
	logPrefix := "[" + runID + "] "

	if len(argv) < 3 {
		log.Print(logPrefix + "Usage: ntlink <b|r> <base_dir> <name> [r] [d] [j] [f <file>]")
		return 1
	}

	mode := argv[0]
	baseDir := argv[1]
	name := argv[2]

	var opts ntfs.BackupOptions
	var manifestPath string
	rest := argv[3:]
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "r":
			opts.Recursive = true
		case "d":
			opts.Dry = true
		case "j":
			opts.Reljunc = true
		case "f":
			i++
			if i >= len(rest) {
				log.Print(logPrefix + "Usage: ntlink <b|r> <base_dir> <name> [r] [d] [j] [f <file>]")
				return 1
			}
			manifestPath = rest[i]
		}
	}

	switch mode {
	case "b":
		f, closeFn, err := openManifestForWrite(manifestPath)
		if err != nil {
			log.Print(logPrefix + err.Error())
			return 2
		}
		defer closeFn()

		if err := ntfs.Backup(baseDir, name, opts, f); err != nil {
			log.Printf("%sBackup of %s failed: %s", logPrefix, name, err)
			return 3
		}
		log.Printf("%sBackup of %s under %s complete", logPrefix, name, baseDir)
		return 0

	case "r":
		f, closeFn, err := openManifestForRead(manifestPath)
		if err != nil {
			log.Print(logPrefix + err.Error())
			return 2
		}
		defer closeFn()

		result, err := ntfs.Restore(baseDir, f)
		if err != nil {
			log.Printf("%sRestore onto %s failed: %s", logPrefix, baseDir, err)
			return 3
		}
		for _, failure := range result.Failed {
			log.Printf("%sFailed to restore %s: %s", logPrefix, failure.Record.Link, failure.Err)
		}
		log.Printf("%sRestore onto %s complete: %d installed, %d failed",
			logPrefix, baseDir, result.Installed, len(result.Failed))
		return 0

	default:
		log.Print(logPrefix + "Usage: ntlink <b|r> <base_dir> <name> [r] [d] [j] [f <file>]")
		return 1
	}
}

func openManifestForWrite(manifestPath string) (*os.File, func(), error) {
	if manifestPath == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(manifestPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func openManifestForRead(manifestPath string) (*os.File, func(), error) {
	if manifestPath == "" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(manifestPath)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
