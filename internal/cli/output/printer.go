// Package output renders CLI results as colored text, aligned tables,
// progress bars or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes human output to out and failures to errOut. In JSON mode
// only JSON documents reach out; quiet mode keeps failures only.
type Printer struct {
	out     io.Writer
	errOut  io.Writer
	json    bool
	quiet   bool
	noColor bool
}

type Option func(*Printer)

func WithJSON(json bool) Option {
	return func(p *Printer) { p.json = json }
}

func WithQuiet(quiet bool) Option {
	return func(p *Printer) { p.quiet = quiet }
}

func WithNoColor(noColor bool) Option {
	return func(p *Printer) { p.noColor = noColor }
}

func WithOutput(out io.Writer) Option {
	return func(p *Printer) { p.out = out }
}

func WithErrOutput(errOut io.Writer) Option {
	return func(p *Printer) { p.errOut = errOut }
}

func New(opts ...Option) *Printer {
	p := &Printer{
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.noColor {
		color.NoColor = true
	}
	return p
}

var (
	successIcon = color.GreenString("✓")
	errorIcon   = color.RedString("✗")
	warnIcon    = color.YellowString("!")
	infoIcon    = color.CyanString("→")
	indentIcon  = color.HiBlackString("└─")
)

// Out is the writer used for regular output, for tables and prompts.
func (p *Printer) Out() io.Writer {
	return p.out
}

func (p *Printer) silent() bool {
	return p.quiet || p.json
}

func (p *Printer) line(prefix, format string, args ...interface{}) {
	if p.silent() {
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}

func (p *Printer) Printf(format string, args ...interface{}) {
	if !p.silent() {
		fmt.Fprintf(p.out, format, args...)
	}
}

func (p *Printer) Println(args ...interface{}) {
	if !p.silent() {
		fmt.Fprintln(p.out, args...)
	}
}

func (p *Printer) Success(format string, args ...interface{}) {
	p.line(successIcon, format, args...)
}

func (p *Printer) Warn(format string, args ...interface{}) {
	p.line(warnIcon, format, args...)
}

func (p *Printer) Info(format string, args ...interface{}) {
	p.line(infoIcon, format, args...)
}

func (p *Printer) Indent(format string, args ...interface{}) {
	p.line("  "+indentIcon, format, args...)
}

// Error is shown even in quiet mode.
func (p *Printer) Error(format string, args ...interface{}) {
	if p.json {
		return
	}
	fmt.Fprintf(p.errOut, "%s %s\n", errorIcon, fmt.Sprintf(format, args...))
}

func (p *Printer) JSON(v interface{}) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *Printer) Section(title string) {
	if !p.silent() {
		fmt.Fprintf(p.out, "\n%s\n", color.New(color.Bold, color.FgCyan).Sprint(title))
	}
}

func (p *Printer) KeyValue(key, value string) {
	if !p.silent() {
		fmt.Fprintf(p.out, "  %s %s\n", color.HiBlackString("%-12s", key+":"), value)
	}
}

// Summary prints the outcome of a batch. Skipped items are reported only
// when there are some.
func (p *Printer) Summary(successful, failed, skipped int) {
	if p.silent() {
		return
	}
	total := successful + failed + skipped
	line := fmt.Sprintf("%d/%d completed successfully", successful, total)
	c := color.New(color.FgGreen)
	if failed > 0 {
		line = fmt.Sprintf("%d/%d completed (%d failed)", successful, total, failed)
		c = color.New(color.FgYellow)
	}
	if skipped > 0 {
		line += fmt.Sprintf(", %d skipped", skipped)
	}
	fmt.Fprintln(p.out)
	_, _ = c.Fprintln(p.out, line)
}

// FileResized reports one stored output: "✓ in.png → resized-x.jpg (detail)".
func (p *Printer) FileResized(source, stored, detail string) {
	p.line(successIcon, "%s %s %s (%s)", source, infoIcon, stored, detail)
}

func (p *Printer) FileFailed(filename string, err error) {
	p.Error("%s: %v", filename, err)
}
