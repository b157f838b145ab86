package shell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilesystem_CdAndCwd(t *testing.T) {
	fs := NewFilesystem()

	orig, err := fs.Cwd()
	require.NoError(t, err)
	defer os.Chdir(orig)

	tmp := t.TempDir()
	require.NoError(t, fs.Cd(tmp))

	cwd, err := fs.Cwd()
	require.NoError(t, err)

	resolvedTmp, err := filepath.EvalSymlinks(tmp)
	require.NoError(t, err)
	resolvedCwd, err := filepath.EvalSymlinks(cwd)
	require.NoError(t, err)
	require.Equal(t, resolvedTmp, resolvedCwd)
}

func TestFilesystem_CdNonexistentPropagatesError(t *testing.T) {
	fs := NewFilesystem()
	orig, err := fs.Cwd()
	require.NoError(t, err)
	defer os.Chdir(orig)

	err = fs.Cd("/no/such/directory/exists/anywhere")
	require.Error(t, err)

	after, err := fs.Cwd()
	require.NoError(t, err)
	require.Equal(t, orig, after, "cwd must not change on a failed cd")
}

func TestFilesystem_CdToHomeRequiresHome(t *testing.T) {
	fs := newFilesystemFromConfig(envConfig{home: ""})
	err := fs.CdToHome()
	require.Error(t, err)

	var crash *CrashError
	require.ErrorAs(t, err, &crash)
	require.Equal(t, "HOME", crash.Syscall)
}

func TestFilesystem_LocateFindsExecutableOnPath(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "mytool")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0755))

	fs := newFilesystemFromConfig(envConfig{path: dir})
	path, ok := fs.Locate("mytool")
	require.True(t, ok)
	require.Equal(t, exe, path)
}

func TestFilesystem_LocateRejectsNonExecutable(t *testing.T) {
	dir := t.TempDir()
	notExe := filepath.Join(dir, "notexe")
	require.NoError(t, os.WriteFile(notExe, []byte("data"), 0644))

	fs := newFilesystemFromConfig(envConfig{path: dir})
	_, ok := fs.Locate("notexe")
	require.False(t, ok)
}

func TestFilesystem_LocateRejectsGroupOtherExecuteOnly(t *testing.T) {
	dir := t.TempDir()
	notExe := filepath.Join(dir, "groupexec")
	// Group and other execute bits set, owner-execute bit clear: §4.3
	// requires checking the owner-execute bit specifically, so this
	// must NOT be treated as locatable.
	require.NoError(t, os.WriteFile(notExe, []byte("data"), 0066))
	require.NoError(t, os.Chmod(notExe, 0066))

	fs := newFilesystemFromConfig(envConfig{path: dir})
	_, ok := fs.Locate("groupexec")
	require.False(t, ok)
}

func TestFilesystem_LocateNotFound(t *testing.T) {
	fs := NewFilesystem()
	_, ok := fs.Locate("definitely-not-a-real-command-xyz")
	require.False(t, ok)
}
