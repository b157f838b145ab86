// Command shell is an interactive Unix command-line shell.
//
// It reads a line at a time from stdin, parses it into a pipeline of
// commands with optional file redirection and an optional trailing
// background marker, and executes the pipeline with job control:
// foreground children own the controlling terminal, a single
// background slot tracks the most recently stopped or backgrounded
// child, and fg brings it back.
package main

import (
	"os"

	"github.com/Bipinoli/unix-like-shell/pkg/shell"
)

func main() {
	s, err := shell.New(os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	code := s.Run()
	s.Sync()
	os.Exit(code)
}
