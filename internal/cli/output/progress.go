package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Progress is a per-file progress bar for batch commands. It keeps a
// running failure count in the label so problems are visible before the
// summary is printed. A quiet Progress tracks counts but draws nothing.
type Progress struct {
	bar     *progressbar.ProgressBar
	label   string
	quiet   bool
	out     io.Writer
	started time.Time
	done    int
	failed  int
}

type ProgressOption func(*Progress)

func ProgressWithQuiet(quiet bool) ProgressOption {
	return func(p *Progress) { p.quiet = quiet }
}

func ProgressWithOutput(out io.Writer) ProgressOption {
	return func(p *Progress) { p.out = out }
}

func NewProgress(total int, label string, opts ...ProgressOption) *Progress {
	p := &Progress{
		label:   label,
		out:     os.Stderr,
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.quiet {
		return p
	}

	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() { _, _ = fmt.Fprintln(p.out) }),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return p
}

// Start labels the bar with the item about to be processed.
func (p *Progress) Start(item string) {
	if p.bar != nil {
		p.bar.Describe(p.describe(item))
	}
}

// Done advances the bar by one item.
func (p *Progress) Done(failed bool) {
	p.done++
	if failed {
		p.failed++
	}
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *Progress) describe(item string) string {
	if p.failed > 0 {
		return fmt.Sprintf("%s [red](%d failed)[reset] %s", p.label, p.failed, item)
	}
	return p.label + " " + item
}

// Counts reports how many items finished and how many of those failed.
func (p *Progress) Counts() (done, failed int) {
	return p.done, p.failed
}

func (p *Progress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

func (p *Progress) Duration() time.Duration {
	return time.Since(p.started)
}

// Spinner marks a single long-running step with no known item count.
type Spinner struct {
	bar     *progressbar.ProgressBar
	started time.Time
}

func NewSpinner(out io.Writer, label string, quiet bool) *Spinner {
	s := &Spinner{started: time.Now()}
	if quiet {
		return s
	}

	s.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWriter(out),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionOnCompletion(func() { _, _ = fmt.Fprintln(out) }),
	)
	_ = s.bar.RenderBlank()
	return s
}

func (s *Spinner) Finish() {
	if s.bar != nil {
		_ = s.bar.Finish()
	}
}

func (s *Spinner) Duration() time.Duration {
	return time.Since(s.started)
}
