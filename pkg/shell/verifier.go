package shell

import (
	"errors"
	"fmt"
)

// ErrEmptyInput signals a no-op parse: nothing to run, no error to print.
var ErrEmptyInput = errors.New("empty input")

// Parse turns a raw input line into a Job. It tokenizes, extracts the
// trailing background marker, applies the quote-stripping fixup,
// validates modifier placement, and assembles the pipeline.
//
// A return of (Job{}, ErrEmptyInput) means: print nothing, show the
// next prompt. Any other non-nil error is a parse-time diagnostic to
// print verbatim.
func Parse(line string) (Job, error) {
	tokens := Tokenize(line)
	return parseTokens(tokens)
}

func parseTokens(tokens []string) (Job, error) {
	inBg := false
	if n := len(tokens); n > 0 && tokens[n-1] == "&" {
		tokens = tokens[:n-1]
		inBg = true
	}

	if len(tokens) == 0 {
		return Job{}, ErrEmptyInput
	}

	tokens = stripQuoteFixup(tokens)

	if err := validate(tokens); err != nil {
		return Job{}, err
	}

	cmds := assemble(tokens)
	return Job{Cmds: cmds, InBg: inBg}, nil
}

// stripQuoteFixup strips a leading+trailing matching quote character
// from any token that arrives already so-annotated. The canonical
// tokenizer never produces such tokens; this keeps the verifier robust
// to any other tokenizer feeding it.
func stripQuoteFixup(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		if len(t) > 1 && (t[0] == '\'' || t[0] == '"') && t[len(t)-1] == t[0] {
			t = t[1 : len(t)-1]
		}
		out[i] = t
	}
	return out
}

func isAlphanumericLeading(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[0]
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '.' || c == '/':
		return true
	}
	return false
}

func isModifier(tok string) bool {
	return tok == "|" || tok == ">"
}

// validate scans left to right, rejecting leading/adjacent/embedded
// modifiers, per §4.2's expect_modifier state machine.
func validate(tokens []string) error {
	expectModifier := false
	for i, tok := range tokens {
		if expectModifier {
			if !isModifier(tok) {
				return fmt.Errorf("illegal: %s", tok)
			}
			expectModifier = false
			continue
		}
		if !isAlphanumericLeading(tok) {
			return fmt.Errorf("illegal: %s", tok)
		}
		if i+1 < len(tokens) && !isAlphanumericLeading(tokens[i+1]) {
			expectModifier = true
		}
	}
	return nil
}

// assemble walks validated tokens into a pipeline of Commands.
func assemble(tokens []string) []Command {
	cmds := []Command{{}}
	cur := 0

	for _, tok := range tokens {
		switch tok {
		case "|":
			cmds[cur].OutRedirect = true
			cmds = append(cmds, Command{InRedirect: true})
			cur++
		case ">":
			cmds[cur].OutRedirect = true
			cmds = append(cmds, Command{InRedirect: true, IsLastOfPipeline: true})
			cur++
		default:
			cmds[cur].Argv = append(cmds[cur].Argv, tok)
		}
	}

	return cmds
}
