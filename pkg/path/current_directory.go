package path

import "os"

// CurrentDirectory returns the process's current working directory.
// It exists so that ToAbsolute's implicit base can be swapped out in
// tests; production callers should virtually always prefer passing an
// explicit base to ToAbsolute instead of relying on this.
//
// This is the one piece of process-wide state the path algebra reads;
// concurrent mutation of the CWD from another goroutine during a call
// yields unspecified, but not unsafe, results (see spec's concurrency
// model).
var CurrentDirectory = os.Getwd
