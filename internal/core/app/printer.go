package app

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"hookdeps/internal/engine/analyzer"
)

var (
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// Printer renders diagnostics and run summaries for the terminal.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) PrintResults(results []FileResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, res := range results {
		for _, d := range res.Diagnostics {
			p.printDiagnostic(d)
		}
	}
}

func (p *Printer) printDiagnostic(d *analyzer.Diagnostic) {
	label := severityLabel(d.Severity)
	location := pathStyle.Render(fmt.Sprintf("%s:%d:%d", d.Location.File, d.Location.Line, d.Location.Column))

	fmt.Fprintf(p.out, "%s %s %s [%s]\n", location, label, d.Message, d.Code)
	for _, s := range d.Suggestions {
		fmt.Fprintf(p.out, "    %s\n", hintStyle.Render(s.Description))
	}
}

func severityLabel(s analyzer.Severity) string {
	switch s {
	case analyzer.SeverityError:
		return errorStyle.Render("error")
	case analyzer.SeverityWarn:
		return warnStyle.Render("warning")
	default:
		return infoStyle.Render("info")
	}
}

func (p *Printer) PrintSummary(summary *Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if summary.Diagnostics == 0 {
		fmt.Fprintln(p.out, successStyle.Render(fmt.Sprintf(
			"✓ %d files, %d call sites, no dependency problems (%.2fs)",
			summary.Files, summary.CallSites, summary.Duration.Seconds())))
		return
	}

	fmt.Fprintln(p.out, warnStyle.Render(fmt.Sprintf(
		"%d problems across %d files, %d call sites (%.2fs)",
		summary.Diagnostics, summary.Files, summary.CallSites, summary.Duration.Seconds())))
}
