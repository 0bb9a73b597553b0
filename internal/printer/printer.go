// Package printer sends rendered labels to a physical printer or a spool
// directory.
package printer

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/lepinkainen/shelfmark/internal/label"
)

// Job is one label to print.
type Job struct {
	UID   uint64
	Image image.Image
}

// Printer transmits a rendered label. Failures are reported to the caller
// and never retried here.
type Printer interface {
	Print(ctx context.Context, job Job) error
}

// SpoolPrinter writes each label as a PNG named after its UID token. It is
// used for dry runs and for printers fed from a watched folder.
type SpoolPrinter struct {
	Dir string
}

// Compile-time check that SpoolPrinter implements Printer.
var _ Printer = (*SpoolPrinter)(nil)

// Print saves the label image to Dir.
func (p *SpoolPrinter) Print(_ context.Context, job Job) error {
	path, err := p.Path(job.UID)
	if err != nil {
		return err
	}
	if err := imaging.Save(job.Image, path); err != nil {
		return fmt.Errorf("failed to write label %s: %w", path, err)
	}
	slog.Info("Label spooled", "uid", job.UID, "path", path)
	return nil
}

// Path returns the file a label is spooled to, creating Dir if needed.
func (p *SpoolPrinter) Path(uid uint64) (string, error) {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create spool directory: %w", err)
	}
	return filepath.Join(p.Dir, label.FormatUID(uid)+".png"), nil
}

// CommandPrinter hands each label to an external print command. Template
// arguments may contain {printer} and {file}, replaced by the printer
// identifier and the path of a temporary PNG.
type CommandPrinter struct {
	PrinterID string
	Template  []string
}

// Compile-time check that CommandPrinter implements Printer.
var _ Printer = (*CommandPrinter)(nil)

// execCommand is replaced in tests.
var execCommand = exec.CommandContext

// NewCommandPrinter parses a whitespace-separated command template.
func NewCommandPrinter(printerID, template string) (*CommandPrinter, error) {
	args := strings.Fields(template)
	if len(args) == 0 {
		return nil, fmt.Errorf("print command is empty")
	}
	return &CommandPrinter{PrinterID: printerID, Template: args}, nil
}

// Print writes the label to a temporary PNG and runs the command.
func (p *CommandPrinter) Print(ctx context.Context, job Job) error {
	tmp, err := os.CreateTemp("", "label-*.png")
	if err != nil {
		return fmt.Errorf("failed to create label file: %w", err)
	}
	path := tmp.Name()
	defer func() { _ = os.Remove(path) }()

	if err := imaging.Encode(tmp, job.Image, imaging.PNG); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode label: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write label file: %w", err)
	}

	args := p.Args(path)
	slog.Debug("Running print command", "uid", job.UID, "command", strings.Join(args, " "))

	out, err := execCommand(ctx, args[0], args[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("print command failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	slog.Info("Label printed", "uid", job.UID, "printer", p.PrinterID)
	return nil
}

// Args expands the template for a label file.
func (p *CommandPrinter) Args(file string) []string {
	r := strings.NewReplacer("{printer}", p.PrinterID, "{file}", file)
	args := make([]string, len(p.Template))
	for i, a := range p.Template {
		args[i] = r.Replace(a)
	}
	return args
}
