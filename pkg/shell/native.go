package shell

import (
	"fmt"
)

// NativeHandler is invoked in the shell process itself, with no
// fork/execve, per §3's NativeRegistry and §9's "closures capturing
// shell state" design note, generalized into an explicit interface so
// lifetimes stay visible instead of hiding in ad hoc closures.
type NativeHandler interface {
	Invoke(s *Shell, argv []string) error
}

// NativeHandlerFunc adapts a plain function to a NativeHandler.
type NativeHandlerFunc func(s *Shell, argv []string) error

func (f NativeHandlerFunc) Invoke(s *Shell, argv []string) error { return f(s, argv) }

// NativeRegistry is an immutable name -> handler mapping populated once
// at startup.
type NativeRegistry struct {
	handlers map[string]NativeHandler
}

func (r *NativeRegistry) Lookup(name string) (NativeHandler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// NewNativeRegistry populates the standard set: exit, pwd, cd, fg, plus
// the test/testbg diagnostic fixtures carried over from the original
// implementation (§12 of the expanded spec).
func NewNativeRegistry() *NativeRegistry {
	return &NativeRegistry{handlers: map[string]NativeHandler{
		"exit":   NativeHandlerFunc(nativeExit),
		"pwd":    NativeHandlerFunc(nativePwd),
		"cd":     NativeHandlerFunc(nativeCd),
		"fg":     NativeHandlerFunc(nativeFg),
		"test":   NativeHandlerFunc(nativeTest),
		"testbg": NativeHandlerFunc(nativeTestBg),
	}}
}

func nativeExit(s *Shell, argv []string) error {
	return ErrExit
}

func nativePwd(s *Shell, argv []string) error {
	fmt.Fprintln(s.Out, s.cwd)
	return nil
}

func nativeCd(s *Shell, argv []string) error {
	if len(argv) != 2 {
		fmt.Fprintln(s.Out, "cd: usage: cd <path>")
		return nil
	}
	if err := s.fs.Cd(argv[1]); err != nil {
		fmt.Fprintln(s.Out, "cd:", err)
		return nil
	}
	if cwd, err := s.fs.Cwd(); err == nil {
		s.cwd = cwd
	}
	return nil
}

func nativeFg(s *Shell, argv []string) error {
	return s.launcher.Fg(&s.bgSlot)
}

// nativeTest spawns a long-running foreground sleep, a manual fixture
// for exercising SIGTSTP/fg by hand.
func nativeTest(s *Shell, argv []string) error {
	path, ok := s.fs.Locate("sleep")
	if !ok {
		fmt.Fprintln(s.Out, "unknown command: sleep")
		return nil
	}
	return s.launcher.Foreground(Command{Argv: []string{"sleep", "30"}}, path, &s.bgSlot)
}

// nativeTestBg spawns the same fixture in the background, for
// exercising BackgroundSlot by hand.
func nativeTestBg(s *Shell, argv []string) error {
	path, ok := s.fs.Locate("sleep")
	if !ok {
		fmt.Fprintln(s.Out, "unknown command: sleep")
		return nil
	}
	return s.launcher.Background(Command{Argv: []string{"sleep", "30"}}, path, &s.bgSlot)
}
