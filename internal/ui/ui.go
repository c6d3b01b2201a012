// Package ui provides user interface utilities for the tici application.
package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/d-kuro/tici/internal/table"
	"github.com/d-kuro/tici/pkg/models"
	"github.com/d-kuro/tici/pkg/utils"
	"gopkg.in/yaml.v3"
)

var (
	primaryColor = lipgloss.Color("#0EA5E9") // Blue
	successColor = lipgloss.Color("#22C55E") // Green
	errorColor   = lipgloss.Color("#EF4444") // Red
	mutedColor   = lipgloss.Color("#64748B") // Gray
)

// Printer handles output formatting.
type Printer struct {
	out          io.Writer
	errOut       io.Writer
	useColor     bool
	useIcons     bool
	useTildeHome bool
	home         string
	now          func() time.Time
}

// New creates a new Printer instance writing to stdout and stderr.
func New(config *models.UIConfig) *Printer {
	return &Printer{
		out:          os.Stdout,
		errOut:       os.Stderr,
		useColor:     config.Color,
		useIcons:     config.Icons,
		useTildeHome: config.TildeHome,
		now:          time.Now,
	}
}

// SetOutput redirects regular and error output.
func (p *Printer) SetOutput(out, errOut io.Writer) *Printer {
	p.out = out
	p.errOut = errOut
	return p
}

// SetHeader holds line back until something else is written to the regular
// output or FlushHeader is called. A run that fails before printing anything
// never shows it.
func (p *Printer) SetHeader(line string) {
	if h, ok := p.out.(*headerWriter); ok {
		h.header = line
		return
	}
	p.out = &headerWriter{w: p.out, header: line}
}

// FlushHeader writes a pending header.
func (p *Printer) FlushHeader() {
	if h, ok := p.out.(*headerWriter); ok {
		_ = h.flush()
	}
}

// headerWriter writes a pending header line before the first write.
type headerWriter struct {
	w      io.Writer
	header string
}

func (h *headerWriter) Write(b []byte) (int, error) {
	if err := h.flush(); err != nil {
		return 0, err
	}
	return h.w.Write(b)
}

func (h *headerWriter) flush() error {
	if h.header == "" {
		return nil
	}
	header := h.header
	h.header = ""
	_, err := io.WriteString(h.w, header+"\n")
	return err
}

// SetHome sets the home directory shortened to ~ in displayed paths.
func (p *Printer) SetHome(home string) *Printer {
	p.home = home
	return p
}

// PrintInfo displays an informational message.
func (p *Printer) PrintInfo(message string) {
	_, _ = fmt.Fprintln(p.out, message)
}

// PrintSuccess displays a success message.
func (p *Printer) PrintSuccess(message string) {
	if p.useIcons {
		message = "✓ " + message
	}
	_, _ = fmt.Fprintln(p.out, p.paint(successColor, false, message))
}

// PrintError displays an error as a single line on the error stream.
func (p *Printer) PrintError(err error) {
	line := FormatError(err)
	_, _ = fmt.Fprintln(p.errOut, p.paint(errorColor, false, line))
}

// FormatError renders err as "Error: <message> (cause: <cause>)". The cause
// is the first wrapped error whose text the message does not already carry.
func FormatError(err error) string {
	msg := err.Error()
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		text := cause.Error()
		if text == "" || strings.Contains(msg, text) {
			continue
		}
		return fmt.Sprintf("Error: %s (cause: %s)", msg, text)
	}
	return "Error: " + msg
}

// PrintSession displays a parsed session as an indented tree.
func (p *Printer) PrintSession(session *models.Session) {
	_, _ = fmt.Fprintf(p.out, "%s %s\n", p.paint(primaryColor, true, "Session:"), session.Name)
	for _, w := range session.SortedWindows() {
		marker := "  "
		if w.Active {
			marker = p.activeMarker()
		}
		name := w.Name
		if name == "" {
			name = p.paint(mutedColor, false, "(unnamed)")
		}
		_, _ = fmt.Fprintf(p.out, "%sWindow %d: %s", marker, w.Index, name)
		if w.Layout != "" {
			_, _ = fmt.Fprintf(p.out, " %s", p.paint(mutedColor, false, "["+w.Layout+"]"))
		}
		_, _ = fmt.Fprintln(p.out)

		for _, pane := range w.Panes {
			paneMarker := "    "
			if pane.Active {
				paneMarker = "  " + p.activeMarker()
			}
			_, _ = fmt.Fprintf(p.out, "%sPane %d: %s", paneMarker, pane.Index, p.displayPath(pane.CurrentPath))
			if pane.CurrentCommand != "" {
				_, _ = fmt.Fprintf(p.out, " %s", p.paint(mutedColor, false, "("+pane.CurrentCommand+")"))
			}
			_, _ = fmt.Fprintln(p.out)
		}
	}
}

// PrintSessionJSON displays a parsed session in JSON format.
func (p *Printer) PrintSessionJSON(session *models.Session) error {
	return p.printJSON(session)
}

// PrintSessionYAML displays a parsed session in YAML format.
func (p *Printer) PrintSessionYAML(session *models.Session) error {
	encoder := yaml.NewEncoder(p.out)
	encoder.SetIndent(2)
	if err := encoder.Encode(session); err != nil {
		return err
	}
	return encoder.Close()
}

// PrintSavedSessions displays save files in a table.
func (p *Printer) PrintSavedSessions(sessions []models.SavedSession) error {
	if len(sessions) == 0 {
		p.PrintInfo("No saved sessions found")
		return nil
	}

	style := table.PlainStyle()
	if p.useColor {
		style = table.DefaultStyle()
	}
	b := table.New(style).SetOutput(p.out).Headers("NAME", "HASH", "WINDOWS", "PANES", "SAVED", "PATH")
	rows := utils.Map(sessions, func(s models.SavedSession) []string {
		windows, panes := strconv.Itoa(s.Windows), strconv.Itoa(s.Panes)
		if s.Err != "" {
			windows, panes = "!", "!"
		}
		return []string{s.Name, s.Hash, windows, panes, p.formatTime(s.ModTime), p.displayPath(s.Path)}
	})
	for _, row := range rows {
		b.Row(row...)
	}
	return b.Println()
}

// PrintSavedSessionsJSON displays save files in JSON format.
func (p *Printer) PrintSavedSessionsJSON(sessions []models.SavedSession) error {
	if sessions == nil {
		sessions = []models.SavedSession{}
	}
	return p.printJSON(sessions)
}

// PrintConfig displays configuration as sorted key = value lines.
func (p *Printer) PrintConfig(settings map[string]any) {
	p.printConfigRecursive("", settings)
}

func (p *Printer) printJSON(v any) error {
	encoder := json.NewEncoder(p.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printConfigRecursive recursively prints configuration values.
func (p *Printer) printConfigRecursive(prefix string, data any) {
	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			newPrefix := key
			if prefix != "" {
				newPrefix = prefix + "." + key
			}
			p.printConfigRecursive(newPrefix, v[key])
		}
	default:
		_, _ = fmt.Fprintf(p.out, "%s = %v\n", prefix, v)
	}
}

func (p *Printer) displayPath(path string) string {
	if p.useTildeHome {
		return utils.TildePathWithHome(path, p.home)
	}
	return path
}

func (p *Printer) activeMarker() string {
	if p.useIcons {
		return "● "
	}
	return "* "
}

// paint colors text when color output is enabled.
func (p *Printer) paint(color lipgloss.Color, bold bool, text string) string {
	if !p.useColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Bold(bold).Render(text)
}

// formatTime formats a time value for display.
func (p *Printer) formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}

	diff := p.now().Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
