// Package preflight verifies a run can succeed before any output is
// written: the engine must be invocable, the destination writable, and the
// destination filesystem large enough for the source set.
package preflight

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"dicomscrub/internal/dicomanon"
)

// Result captures one check outcome.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Failed returns the names of failed checks.
func Failed(results []Result) []string {
	var names []string
	for _, r := range results {
		if !r.Passed {
			names = append(names, fmt.Sprintf("%s (%s)", r.Name, r.Detail))
		}
	}
	return names
}

// CheckEngine verifies the external engine can be invoked at all.
func CheckEngine(engine dicomanon.Engine) Result {
	const name = "engine"
	if err := engine.Available(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "binary found"}
}

// CheckSourceDir verifies the source directory exists and is a directory.
func CheckSourceDir(path string) Result {
	const name = "source directory"
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not a directory", path)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDestinationWritable creates the destination directory and proves a
// file can be created inside it.
func CheckDestinationWritable(path string) Result {
	const name = "destination writable"
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	probe, err := os.CreateTemp(path, ".dicomscrub-probe-*")
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	probeName := probe.Name()
	_ = probe.Close()
	_ = os.Remove(probeName)
	return Result{Name: name, Passed: true, Detail: path}
}

var statfs = func(path string) (blockSize uint64, freeBlocks uint64, err error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	return uint64(stat.Bsize), stat.Bavail, nil
}

// CheckFreeSpace verifies the destination filesystem has room for a full
// copy of the source tree. Cleaned files are never larger than their
// sources, so the source total is a safe upper bound.
func CheckFreeSpace(sourceDir, destDir string) Result {
	const name = "free space"

	var total uint64
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += uint64(info.Size())
		return nil
	})
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("walk source: %v", err)}
	}

	blockSize, freeBlocks, err := statfs(destDir)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("statfs destination: %v", err)}
	}
	free := blockSize * freeBlocks
	if free < total {
		return Result{Name: name, Detail: fmt.Sprintf("need %d bytes, %d free", total, free)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d bytes free", free)}
}

// Run executes every check and returns an error naming the failures, if any.
func Run(engine dicomanon.Engine, sourceDir, destDir string) ([]Result, error) {
	results := []Result{
		CheckEngine(engine),
		CheckSourceDir(sourceDir),
		CheckDestinationWritable(destDir),
	}
	if results[1].Passed && results[2].Passed {
		results = append(results, CheckFreeSpace(sourceDir, destDir))
	}
	if failed := Failed(results); len(failed) > 0 {
		return results, fmt.Errorf("preflight failed: %s", strings.Join(failed, "; "))
	}
	return results, nil
}
