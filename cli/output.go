// ABOUTME: Terminal output helpers shared by the CLI commands
// ABOUTME: Styles success and warning lines only when writing to a terminal
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/harperreed/dealdesk/records"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func success(w io.Writer, format string, args ...any) {
	line := "✓ " + fmt.Sprintf(format, args...)
	if isTerminal(w) {
		line = successStyle.Render(line)
	}
	_, _ = fmt.Fprintln(w, line)
}

func warn(w io.Writer, msg string) {
	line := "warning: " + msg
	if isTerminal(w) {
		line = warningStyle.Render(line)
	}
	_, _ = fmt.Fprintln(w, line)
}

// capture attaches a collector so backend messages reach the user.
func capture(ctx context.Context) (context.Context, *records.Collector) {
	var col records.Collector
	return records.WithNotifier(ctx, &col), &col
}

func flushWarnings(w io.Writer, col *records.Collector) {
	for _, msg := range col.Messages() {
		warn(w, msg)
	}
}

func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rules := make([]string, len(headers))
	for i, h := range headers {
		rules[i] = strings.Repeat("-", len(h))
	}
	_, _ = fmt.Fprintln(tw, strings.Join(headers, "\t"))
	_, _ = fmt.Fprintln(tw, strings.Join(rules, "\t"))
	return tw
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func parseID(arg, noun string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %q", noun, arg)
	}
	return id, nil
}
