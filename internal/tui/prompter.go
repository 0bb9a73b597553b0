package tui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/lepinkainen/shelfmark/internal/errors"
)

// Prompter is the operator conversation of a session. Ask and Confirm
// return a StopError when the operator quits from a prompt.
type Prompter interface {
	Ask(prompt, initial string) (string, error)
	Confirm(question string, defaultYes bool) (bool, error)
	Say(format string, args ...any)
	Beep(count int)
	Preview(lines []string)
}

// New returns a full-screen prompter when in is a terminal and a
// line-oriented one otherwise, e.g. for a barcode scanner piping into stdin.
func New(in *os.File, out io.Writer) Prompter {
	if isTerminal(in) {
		return &Terminal{output: output{out: out}}
	}
	return NewLinePrompter(in, out)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Terminal prompts through bubbletea programs.
type Terminal struct {
	output
}

// Compile-time check that Terminal implements Prompter.
var _ Prompter = (*Terminal)(nil)

// Ask implements Prompter.
func (t *Terminal) Ask(prompt, initial string) (string, error) {
	value, action, err := Input(prompt, initial)
	if err != nil {
		return "", err
	}
	if action == ActionStopped {
		return "", errors.NewStopError("prompt cancelled")
	}
	return value, nil
}

// Confirm implements Prompter. Dismissing the question picks the default.
func (t *Terminal) Confirm(question string, defaultYes bool) (bool, error) {
	initial := 1
	if defaultYes {
		initial = 0
	}
	result, err := Select(question, []Choice{{Label: "Yes", Key: "y"}, {Label: "No", Key: "n"}}, initial)
	if err != nil {
		return false, err
	}

	switch result.Action {
	case ActionStopped:
		return false, errors.NewStopError("prompt cancelled")
	case ActionSelected:
		return result.Index == 0, nil
	default:
		return defaultYes, nil
	}
}

var sleep = time.Sleep

const beepInterval = 250 * time.Millisecond

// output holds the non-interactive half of a Prompter.
type output struct {
	out io.Writer
}

// Say prints one line.
func (o output) Say(format string, args ...any) {
	_, _ = fmt.Fprintf(o.out, format+"\n", args...)
}

// Beep rings the terminal bell count times, a quarter second apart.
func (o output) Beep(count int) {
	for i := 0; i < count; i++ {
		_, _ = fmt.Fprint(o.out, "\a")
		if i < count-1 {
			sleep(beepInterval)
		}
	}
}

// Preview prints the label lines in a box.
func (o output) Preview(lines []string) {
	_, _ = fmt.Fprintln(o.out, RenderPreview(lines))
}
