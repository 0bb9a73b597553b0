package tui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/lepinkainen/shelfmark/internal/errors"
)

// LinePrompter reads answers one line at a time. End of input stops the
// session.
type LinePrompter struct {
	output
	in *bufio.Reader
}

// Compile-time check that LinePrompter implements Prompter.
var _ Prompter = (*LinePrompter)(nil)

// NewLinePrompter reads from in and writes prompts to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{output: output{out: out}, in: bufio.NewReader(in)}
}

func (p *LinePrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err == io.EOF && line == "" {
		return "", errors.NewStopError("end of input")
	}
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Ask implements Prompter. An empty answer keeps initial.
func (p *LinePrompter) Ask(prompt, initial string) (string, error) {
	if initial != "" {
		_, _ = fmt.Fprintf(p.out, "%s [%s]: ", prompt, initial)
	} else {
		_, _ = fmt.Fprintf(p.out, "%s: ", prompt)
	}

	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) == "" {
		return initial, nil
	}
	return line, nil
}

// Confirm implements Prompter. An empty answer picks the default; anything
// other than yes or no asks again.
func (p *LinePrompter) Confirm(question string, defaultYes bool) (bool, error) {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}

	for {
		_, _ = fmt.Fprintf(p.out, "%s %s: ", question, hint)
		line, err := p.readLine()
		if err != nil {
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		p.Say("Please answer y or n.")
	}
}
