package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Filesystem centralises the cwd/HOME/PATH contracts the job-execution
// core consumes, generalized from the teacher's inline pathDirs/Lookup
// logic into its own component per the spec's component breakdown.
type Filesystem struct {
	pathDirs []string
	home     string
}

// NewFilesystem reads the environment once via loadEnvConfig (§10.3)
// and builds the PATH search list; an unset PATH leaves only "."
// searched, per §4.3.
func NewFilesystem() *Filesystem {
	return newFilesystemFromConfig(loadEnvConfig())
}

// newFilesystemFromConfig builds a Filesystem from an already-loaded
// envConfig, letting tests inject HOME/PATH by field instead of
// mutating the real process environment.
func newFilesystemFromConfig(cfg envConfig) *Filesystem {
	dirs := []string{"."}
	if cfg.path != "" {
		dirs = append(dirs, strings.Split(cfg.path, string(os.PathListSeparator))...)
	}
	return &Filesystem{pathDirs: dirs, home: cfg.home}
}

// Cwd returns the process's current working directory.
func (fs *Filesystem) Cwd() (string, error) {
	return os.Getwd()
}

// CdToHome changes the cwd to $HOME. A missing HOME is an unrecoverable
// configuration error (CRASH! tier), not a printable one.
func (fs *Filesystem) CdToHome() error {
	if fs.home == "" {
		return &CrashError{Syscall: "HOME", Err: fmt.Errorf("HOME is unset")}
	}
	if err := os.Chdir(fs.home); err != nil {
		return &CrashError{Syscall: "chdir", Err: err}
	}
	return nil
}

// Cd changes the cwd, propagating the OS error rather than treating it
// as fatal; callers print it and leave the cwd unchanged.
func (fs *Filesystem) Cd(path string) error {
	return os.Chdir(path)
}

// Locate searches "." then PATH's directories for an executable regular
// file named name, following symlinks implicitly via Stat. Returns the
// resolved path and true, or "", false.
func (fs *Filesystem) Locate(name string) (string, bool) {
	// An explicit path (contains a slash) is used as-is, matching
	// locate()'s "d/name" construction degenerating to name itself
	// when the caller already supplied a path.
	if strings.ContainsRune(name, '/') {
		if info, err := os.Stat(name); err == nil && isExecutableRegular(info) {
			return name, true
		}
		return "", false
	}

	for _, dir := range fs.pathDirs {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && isExecutableRegular(info) {
			return candidate, true
		}
	}
	return "", false
}

// isExecutableRegular reports whether info is a regular file with its
// owner-execute bit set. §4.3 requires checking the owner-execute bit
// specifically (not group/other), matching
// original_source/myfilesystem.hpp's S_IXUSR-only check.
func isExecutableRegular(info os.FileInfo) bool {
	return info.Mode().IsRegular() && info.Mode()&0100 != 0
}
