// Package ui renders command previews, manifests, panels and summary tables
// to an explicit output sink. Nothing in this package affects control flow:
// it exists so provisioning steps can narrate what they do, and so tests can
// run against a silent buffer instead of the process's real stdout.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Console writes formatted status output to a single sink.
type Console struct {
	w     io.Writer
	color bool
}

// NewConsole creates a console writing to w. Styling is enabled only when w
// is a terminal.
func NewConsole(w io.Writer) *Console {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Console{w: w, color: color}
}

// NewColorConsole creates a console with styling forced on or off,
// regardless of the sink. Tests use this to keep output deterministic.
func NewColorConsole(w io.Writer, color bool) *Console {
	return &Console{w: w, color: color}
}

func (c *Console) render(style lipgloss.Style, s string) string {
	if !c.color {
		return s
	}
	return style.Render(s)
}

// Printf writes a plain formatted line.
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.w, format+"\n", args...)
}

// Successf writes a check-marked status line.
func (c *Console) Successf(format string, args ...any) {
	fmt.Fprintln(c.w, c.render(successStyle, checkMark+" "+fmt.Sprintf(format, args...)))
}

// Failf writes a cross-marked status line.
func (c *Console) Failf(format string, args ...any) {
	fmt.Fprintln(c.w, c.render(errorStyle, crossMark+" "+fmt.Sprintf(format, args...)))
}

// Warnf writes a warning line.
func (c *Console) Warnf(format string, args ...any) {
	fmt.Fprintln(c.w, c.render(warningStyle, warnMark+" "+fmt.Sprintf(format, args...)))
}

// Panel writes a titled, bordered block of text.
func (c *Console) Panel(title, body string) {
	fmt.Fprintln(c.w, c.render(titleStyle, title))
	fmt.Fprintln(c.w, panelStyle.Render(body))
}

// ErrorPanel writes a titled, bordered block for failure output.
func (c *Console) ErrorPanel(title, body string) {
	fmt.Fprintln(c.w, c.render(errorStyle, title))
	fmt.Fprintln(c.w, panelStyle.Render(body))
}

// Command displays an external command the way a user would type it, with
// each option wrapped onto its own continuation line. The az and kubectl
// tools get their own title styling so the two surfaces are easy to tell
// apart in a transcript.
func (c *Console) Command(description string, argv []string) {
	if len(argv) == 0 {
		return
	}

	var title string
	switch argv[0] {
	case "az":
		title = c.render(azureStyle, "Azure CLI Command")
	case "kubectl":
		title = c.render(kubectlStyle, "Kubernetes Command")
	default:
		title = "Command"
	}
	if description != "" {
		title = title + ": " + description
	}

	fmt.Fprintln(c.w, title)
	fmt.Fprintln(c.w, panelStyle.Render(c.render(commandStyle, FormatCommand(argv))))
}

// YAML displays a manifest with light key highlighting and line numbers.
func (c *Console) YAML(title string, data []byte) {
	fmt.Fprintln(c.w, c.render(azureStyle, title))

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	var b strings.Builder
	for i, line := range lines {
		b.WriteString(c.render(dimStyle, fmt.Sprintf("%3d ", i+1)))
		b.WriteString(c.highlightYAMLLine(line))
		if i < len(lines)-1 {
			b.WriteString("\n")
		}
	}
	fmt.Fprintln(c.w, panelStyle.Render(b.String()))
}

func (c *Console) highlightYAMLLine(line string) string {
	if !c.color {
		return line
	}
	trimmed := strings.TrimLeft(line, " -")
	key, rest, found := strings.Cut(trimmed, ":")
	if !found || strings.Contains(key, " ") {
		return line
	}
	prefix := line[:len(line)-len(trimmed)]
	return prefix + yamlKeyStyle.Render(key) + ":" + rest
}

// Table writes a titled two-column attribute table.
func (c *Console) Table(title string, rows [][2]string) {
	width := 0
	for _, row := range rows {
		if len(row[0]) > width {
			width = len(row[0])
		}
	}

	fmt.Fprintln(c.w, c.render(titleStyle, title))
	var b strings.Builder
	for i, row := range rows {
		b.WriteString(c.render(labelStyle, pad(row[0], width)))
		b.WriteString("  ")
		b.WriteString(c.render(valueStyle, row[1]))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	fmt.Fprintln(c.w, panelStyle.Render(b.String()))
}

// ResultsTable writes a titled table with arbitrary columns.
func (c *Console) ResultsTable(title string, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	fmt.Fprintln(c.w, c.render(titleStyle, title))
	var b strings.Builder
	for i, h := range headers {
		b.WriteString(c.render(labelStyle, pad(h, widths[i])))
		if i < len(headers)-1 {
			b.WriteString("  ")
		}
	}
	b.WriteString("\n")
	b.WriteString(c.render(dimStyle, strings.Repeat("─", totalWidth(widths))))
	for _, row := range rows {
		b.WriteString("\n")
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			b.WriteString(pad(cell, widths[i]))
			if i < len(row)-1 {
				b.WriteString("  ")
			}
		}
	}
	fmt.Fprintln(c.w, panelStyle.Render(b.String()))
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func totalWidth(widths []int) int {
	total := 0
	for _, w := range widths {
		total += w
	}
	return total + 2*(len(widths)-1)
}

// FormatCommand renders an argv the way it would be typed in a shell, with
// options wrapped onto indented continuation lines and arguments quoted
// where needed.
func FormatCommand(argv []string) string {
	if len(argv) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(argv[0])
	for _, arg := range argv[1:] {
		if strings.HasPrefix(arg, "-") {
			b.WriteString(" \\\n  ")
		} else {
			b.WriteString(" ")
		}
		b.WriteString(quote(arg))
	}
	return b.String()
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.ContainsAny(s, " \t\"'$&|<>()*?;") {
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return s
}
