package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
)

// Shell is the REPL driver and job-execution core's top-level value,
// replacing the teacher's Shell struct with one generalized to the
// full job-control model: a Filesystem helper, a NativeRegistry, a
// Launcher, and the single-slot BackgroundSlot all live as explicit
// fields here rather than as closures or package globals (§9's
// "package them as explicit fields" design note).
type Shell struct {
	in  *bufio.Reader
	Out io.Writer
	Err io.Writer

	fs       *Filesystem
	registry *NativeRegistry
	launcher *Launcher
	logger   *zap.Logger

	cwd    string
	bgSlot BackgroundSlot
}

// New constructs a Shell wired to read from in and write prompts and
// diagnostics to out/errw. It does not yet perform the §4.6
// initialisation sequence; call Run to do that and enter the REPL.
func New(in io.Reader, out, errw io.Writer) (*Shell, error) {
	logger, err := NewLogger()
	if err != nil {
		return nil, err
	}
	launcher, err := NewLauncher(logger, out, errw)
	if err != nil {
		return nil, err
	}
	return &Shell{
		in:       bufio.NewReader(in),
		Out:      out,
		Err:      errw,
		fs:       NewFilesystem(),
		registry: NewNativeRegistry(),
		launcher: launcher,
		logger:   logger,
	}, nil
}

// installJobControlDispositions ignores SIGINT, SIGTSTP, SIGTTOU, and
// SIGTTIN in the shell process itself, per §4.6 and §5's cancellation
// model: keyboard signals reach only the current foreground child's
// process group, never the shell.
func installJobControlDispositions() {
	signal.Ignore(syscall.SIGINT, syscall.SIGTSTP, syscall.SIGTTOU, syscall.SIGTTIN)
}

func (s *Shell) init() error {
	installJobControlDispositions()
	if err := s.fs.CdToHome(); err != nil {
		return err
	}
	cwd, err := s.fs.Cwd()
	if err != nil {
		return &CrashError{Syscall: "getcwd", Err: err}
	}
	s.cwd = cwd
	return nil
}

// Run performs the §4.6 initialisation and then loops: print prompt,
// read a line, parse, dispatch, recover from per-command errors. It
// returns the process exit status (0 on exit/EOF, 1 on a CRASH!).
func (s *Shell) Run() int {
	if err := s.init(); err != nil {
		s.reportCrash(err)
		return 1
	}

	for {
		fmt.Fprintf(s.Out, "[%s]$ ", s.cwd)

		line, err := s.in.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return 0
			}
			s.reportCrash(&CrashError{Syscall: "read", Err: err})
			return 1
		}
		line = strings.TrimRight(line, "\n")

		job, perr := Parse(line)
		if perr != nil {
			if errors.Is(perr, ErrEmptyInput) {
				continue
			}
			fmt.Fprintln(s.Out, perr)
			continue
		}

		if err := s.runJob(job); err != nil {
			if errors.Is(err, ErrExit) {
				return 0
			}
			var crash *CrashError
			if errors.As(err, &crash) {
				s.reportCrash(crash)
				return 1
			}
			fmt.Fprintln(s.Out, err)
		}
	}
}

func (s *Shell) reportCrash(err error) {
	fmt.Fprintln(s.Err, err)
	s.logger.Error("crash", zap.Error(err))
}

// runJob is the job manager's run(job) of §4.5.
func (s *Shell) runJob(job Job) error {
	if handler, ok := job.IsNative(s.registry); ok {
		s.logger.Debug("dispatching native job", zap.String("name", job.Cmds[0].Argv[0]))
		return handler.Invoke(s, job.Cmds[0].Argv)
	}

	paths := make([]string, len(job.Cmds))
	for i, cmd := range job.Cmds {
		if cmd.IsLastOfPipeline {
			continue
		}
		path, ok := s.fs.Locate(cmd.Argv[0])
		if !ok {
			return fmt.Errorf("unknown command: %s", cmd.Argv[0])
		}
		paths[i] = path
	}

	if len(job.Cmds) == 1 {
		if job.InBg {
			return s.launcher.Background(job.Cmds[0], paths[0], &s.bgSlot)
		}
		return s.launcher.Foreground(job.Cmds[0], paths[0], &s.bgSlot)
	}

	s.logger.Debug("launching pipeline", zap.Int("stages", len(job.Cmds)))
	_, err := s.launcher.Pipeline(job, paths)
	return err
}

// Sync flushes the logger; call once before process exit.
func (s *Shell) Sync() {
	_ = s.logger.Sync()
}
