// Command condor-convert rewrites MotionLogger exports as Condor reports with
// a different epoch length.
//
// Usage:
//
//	condor-convert [-epoch seconds] [-config file] [-out-dir dir] [-force] [-v] export.txt...
//
// When -epoch is omitted the epoch length is read from stdin.
package main

import (
	"os"

	"github.com/banshee-data/motionlogger-condor/internal/fsutil"
	"github.com/banshee-data/motionlogger-condor/internal/timeutil"
)

func main() {
	os.Exit(run(os.Args[1:], env{
		fs:     fsutil.OSFileSystem{},
		clock:  timeutil.RealClock{},
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}))
}
