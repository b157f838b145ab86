package shell

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	s, err := New(strings.NewReader(""), &out, &errOut)
	require.NoError(t, err)
	cwd, err := s.fs.Cwd()
	require.NoError(t, err)
	s.cwd = cwd
	return s, &out, &errOut
}

func TestNativeExit(t *testing.T) {
	s, _, _ := newTestShell(t)
	err := s.runJob(Job{Cmds: []Command{{Argv: []string{"exit"}}}})
	require.True(t, errors.Is(err, ErrExit))
}

func TestNativePwd(t *testing.T) {
	s, out, _ := newTestShell(t)
	err := s.runJob(Job{Cmds: []Command{{Argv: []string{"pwd"}}}})
	require.NoError(t, err)
	require.Equal(t, s.cwd+"\n", out.String())
}

func TestNativeCd_WrongArity(t *testing.T) {
	s, out, _ := newTestShell(t)
	before := s.cwd
	err := s.runJob(Job{Cmds: []Command{{Argv: []string{"cd"}}}})
	require.NoError(t, err)
	require.Contains(t, out.String(), "usage")
	require.Equal(t, before, s.cwd, "cd with wrong arity must not change cwd")
}

func TestNativeCd_Success(t *testing.T) {
	s, _, _ := newTestShell(t)
	defer os.Chdir(s.cwd)
	tmp := t.TempDir()
	err := s.runJob(Job{Cmds: []Command{{Argv: []string{"cd", tmp}}}})
	require.NoError(t, err)
	require.Equal(t, tmp, s.cwd)
}

func TestNativeCd_NonexistentPrintsErrorNoStateChange(t *testing.T) {
	s, out, _ := newTestShell(t)
	before := s.cwd
	err := s.runJob(Job{Cmds: []Command{{Argv: []string{"cd", "/no/such/dir"}}}})
	require.NoError(t, err)
	require.NotEmpty(t, out.String())
	require.Equal(t, before, s.cwd)
}

func TestNativeFg_EmptySlotIsNoop(t *testing.T) {
	s, _, _ := newTestShell(t)
	err := s.runJob(Job{Cmds: []Command{{Argv: []string{"fg"}}}})
	require.NoError(t, err)
}

func TestJobManager_UnknownCommand(t *testing.T) {
	s, out, _ := newTestShell(t)
	err := s.runJob(Job{Cmds: []Command{{Argv: []string{"definitely-not-a-real-command-xyz"}}}})
	require.Error(t, err)
	require.Equal(t, "unknown command: definitely-not-a-real-command-xyz", err.Error())
	_ = out
}
