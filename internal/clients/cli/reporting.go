package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// A Reporter prints the progress of version derivations as colored text. It satisfies
// [gitver.Reporter].
type Reporter struct {
	out     io.Writer
	label   string
	warning lipgloss.Style
	notice  lipgloss.Style
	version lipgloss.Style
}

// NewReporter makes a Reporter printing to the writer. Colors are only used if the writer is a
// terminal which supports them. If label is non-empty, it prefixes every message.
func NewReporter(out io.Writer, label string) *Reporter {
	renderer := lipgloss.NewRenderer(out)
	return &Reporter{
		out:     out,
		label:   label,
		warning: renderer.NewStyle().Foreground(lipgloss.Color("1")),
		notice:  renderer.NewStyle().Foreground(lipgloss.Color("3")),
		version: renderer.NewStyle().Foreground(lipgloss.Color("2")),
	}
}

// print writes the whole message at once, so that messages from concurrent derivations sharing
// the writer don't interleave.
func (r *Reporter) print(message string) {
	if r.label != "" {
		message = "[" + r.label + "] " + message
	}
	_, _ = io.WriteString(r.out, message+"\n")
}

func (r *Reporter) Infof(format string, a ...any) {
	r.print(r.notice.Render(fmt.Sprintf(format, a...)))
}

func (r *Reporter) Warnf(format string, a ...any) {
	r.print(r.warning.Render("Warning: " + fmt.Sprintf(format, a...)))
}

func (r *Reporter) Result(version string) {
	r.print("Version calculated: " + r.version.Render(version))
}
