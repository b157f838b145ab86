package shell

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// drainBlockSize is the fixed block size used to drain a pipe into the
// last-of-pipeline file target (§4.4.3 item 1, §12.2 of the expanded spec).
const drainBlockSize = 1280

// Launcher implements the three fork/execve launch operations of §4.4:
// foreground single command, background single command, and pipeline.
// It owns the shell's cached pgid and its knowledge of whether stdin is
// a controlling terminal at all (so it can run correctly under a test
// harness or piped input, where tcsetpgrp would simply fail).
type Launcher struct {
	logger     *zap.Logger
	Out        io.Writer
	Err        io.Writer
	selfPgid   int
	isTerminal bool
	ttyFd      int
}

// NewLauncher captures the shell's own process group once at startup
// (§12.4) and determines whether stdin is a real controlling terminal.
func NewLauncher(logger *zap.Logger, out, errw io.Writer) (*Launcher, error) {
	pgid, err := unix.Getpgid(0)
	if err != nil {
		return nil, &CrashError{Syscall: "getpgrp", Err: err}
	}
	fd := int(os.Stdin.Fd())
	return &Launcher{
		logger:     logger,
		Out:        out,
		Err:        errw,
		selfPgid:   pgid,
		isTerminal: term.IsTerminal(fd),
		ttyFd:      fd,
	}, nil
}

// resetJobControlSignals temporarily restores default dispositions for
// SIGINT/SIGTSTP around a fork+exec. Go's fork/exec path gives no hook
// to run code in the child between fork and execve (unlike a C
// pre-exec hook), so the only way to keep a SIG_IGN disposition from
// leaking into the exec'd program (§4.4 common child-side setup, item
// 1) is to flip it off in the shell itself for the narrow window
// around Start() and restore it immediately after.
func resetJobControlSignals() {
	signal.Reset(syscall.SIGINT, syscall.SIGTSTP)
}

func restoreJobControlSignals() {
	signal.Ignore(syscall.SIGINT, syscall.SIGTSTP)
}

func buildCmd(stage Command, path string) *exec.Cmd {
	c := &exec.Cmd{
		Path: path,
		Args: stage.Argv,
		// null environment per §6's spawned-child environment contract.
		Env: []string{},
	}
	return c
}

// reclaimTerminal returns terminal ownership to the shell's own process
// group. A no-op when stdin isn't a controlling terminal.
func (l *Launcher) reclaimTerminal() {
	if !l.isTerminal {
		return
	}
	pgid := int32(l.selfPgid)
	if err := unix.IoctlSetPgrp(l.ttyFd, &pgid); err != nil {
		l.logger.Warn("tcsetpgrp reclaim failed", zap.Error(err))
	}
}

// reapForeground waits (with WUNTRACED) for pid and handles the result
// exactly as §4.4.1 specifies: a stop suspends the job into slot, an
// exit or signal clears it. Shared by Foreground and Fg (§4.4.4).
func (l *Launcher) reapForeground(pid int, slot *BackgroundSlot) error {
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(pid, &ws, unix.WUNTRACED, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return &CrashError{Syscall: "waitpid", Err: err}
		}
		break
	}

	if ws.Stopped() {
		l.reclaimTerminal()
		slot.Set(pid)
		fmt.Fprintln(l.Out, "suspended; resume with fg")
		return nil
	}

	l.reclaimTerminal()
	slot.Clear()
	return nil
}

// Foreground launches a single resolved executable in the foreground,
// per §4.4.1.
func (l *Launcher) Foreground(stage Command, path string, slot *BackgroundSlot) error {
	c := buildCmd(stage, path)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if l.isTerminal {
		c.SysProcAttr.Foreground = true
		c.SysProcAttr.Ctty = 0
	}

	resetJobControlSignals()
	err := c.Start()
	restoreJobControlSignals()
	if err != nil {
		return &CrashError{Syscall: "fork", Err: err}
	}

	return l.reapForeground(c.Process.Pid, slot)
}

// Background launches a single resolved executable in the background,
// per §4.4.2: no terminal transfer, no wait.
func (l *Launcher) Background(stage Command, path string, slot *BackgroundSlot) error {
	c := buildCmd(stage, path)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	resetJobControlSignals()
	err := c.Start()
	restoreJobControlSignals()
	if err != nil {
		return &CrashError{Syscall: "fork", Err: err}
	}

	slot.Set(c.Process.Pid)
	fmt.Fprintln(l.Out, "launched in the background")
	return nil
}

// Fg implements §4.4.4: resume the stopped/backgrounded job in
// BackgroundSlot, bringing it to the foreground.
func (l *Launcher) Fg(slot *BackgroundSlot) error {
	pid, ok := slot.Get()
	if !ok {
		return nil
	}
	slot.Clear()

	if l.isTerminal {
		pgid := int32(pid)
		if err := unix.IoctlSetPgrp(l.ttyFd, &pgid); err != nil {
			return &CrashError{Syscall: "tcsetpgrp", Err: err}
		}
	}
	if err := unix.Kill(-pid, unix.SIGCONT); err != nil {
		return &CrashError{Syscall: "kill", Err: err}
	}

	return l.reapForeground(pid, slot)
}

// pipePair is a single pipe's two ends as the shell's own copies,
// closed individually as each side's single consumer/producer stage
// starts.
type pipePair struct {
	r, w *os.File
}

// Pipeline launches a multi-stage pipeline per §4.4.3. paths[i] is the
// resolved executable path for cmds[i], ignored for the last-of-pipeline
// file-target stage. All process stages share one process group (the
// first stage's pid), so the whole pipeline is signalled as a unit; the
// terminal is transferred to that group once, atomically, at the first
// stage's Start, and reclaimed once after every stage has been waited.
func (l *Launcher) Pipeline(job Job, paths []string) (PipelineResult, error) {
	cmds := job.Cmds
	n := len(cmds)

	pipes := make([]pipePair, n-1)
	for i := range pipes {
		r, w, err := os.Pipe()
		if err != nil {
			return PipelineResult{}, &CrashError{Syscall: "pipe", Err: err}
		}
		pipes[i] = pipePair{r: r, w: w}
	}

	var pids []int
	var pipelinePgid int
	fileTargetIdx := -1

	for i, stage := range cmds {
		if stage.IsLastOfPipeline {
			fileTargetIdx = i
			break
		}

		c := buildCmd(stage, paths[i])
		if stage.InRedirect {
			c.Stdin = pipes[i-1].r
		} else {
			c.Stdin = os.Stdin
		}
		if stage.OutRedirect {
			c.Stdout = pipes[i].w
		} else {
			c.Stdout = os.Stdout
		}
		c.Stderr = os.Stderr

		if i == 0 {
			c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
			if l.isTerminal {
				c.SysProcAttr.Foreground = true
				c.SysProcAttr.Ctty = 0
			}
		} else {
			c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: pipelinePgid}
		}

		resetJobControlSignals()
		err := c.Start()
		restoreJobControlSignals()
		if err != nil {
			return PipelineResult{}, &CrashError{Syscall: "fork", Err: err}
		}

		if i == 0 {
			pipelinePgid = c.Process.Pid
		}
		pids = append(pids, c.Process.Pid)

		if stage.InRedirect {
			pipes[i-1].r.Close()
		}
		if stage.OutRedirect {
			pipes[i].w.Close()
		}
	}

	if fileTargetIdx > 0 {
		if err := drainToFile(pipes[fileTargetIdx-1].r, cmds[fileTargetIdx].Argv[0]); err != nil {
			return PipelineResult{}, err
		}
	}

	result := PipelineResult{}
	for _, pid := range pids {
		var ws unix.WaitStatus
		for {
			_, err := unix.Wait4(pid, &ws, 0, nil)
			if err == unix.EINTR {
				continue
			}
			if err != nil {
				return PipelineResult{}, &CrashError{Syscall: "waitpid", Err: err}
			}
			break
		}
		if ws.Exited() && ws.ExitStatus() != 0 {
			result.Failed = true
		}
		if ws.Signaled() {
			result.Failed = true
		}
	}

	l.reclaimTerminal()

	if result.Failed {
		fmt.Fprintln(l.Err, "pipeline failed!")
	}
	return result, nil
}

// drainToFile reads r to EOF in fixed drainBlockSize blocks, writing to
// a newly created/truncated file named target (§4.4.3 item 1, §12.2).
func drainToFile(r *os.File, target string) error {
	defer r.Close()

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return &CrashError{Syscall: "open", Err: err}
	}
	defer f.Close()

	buf := make([]byte, drainBlockSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return &CrashError{Syscall: "write", Err: werr}
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &CrashError{Syscall: "read", Err: err}
		}
	}
}
