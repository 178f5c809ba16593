package ui

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	primaryColor = lipgloss.Color("#3b82f6") // Blue
	successColor = lipgloss.Color("#10b981") // Green
	warningColor = lipgloss.Color("#f59e0b") // Yellow
	errorColor   = lipgloss.Color("#ef4444") // Red
	mutedColor   = lipgloss.Color("#94a3b8") // Muted gray

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)
)

// NewLogger returns a slog logger backed by charmbracelet/log.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := charmlog.InfoLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: verbose,
		Prefix:          "typegen",
	})
	return slog.New(handler)
}

// Step prints a progress headline.
func Step(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, titleStyle.Render("▸ "+fmt.Sprintf(format, args...)))
}

// Success prints a completion line.
func Success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Warn prints a non-fatal diagnostic.
func Warn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warningStyle.Render("! "+fmt.Sprintf(format, args...)))
}

// Error renders err for the error stream.
func Error(err error) string {
	return errorStyle.Render("✗ " + err.Error())
}

// Files renders the list of written artifacts in a box.
func Files(title string, paths []string) string {
	if len(paths) == 0 {
		return mutedStyle.Render(title + ": none")
	}
	lines := make([]string, 0, len(paths)+1)
	lines = append(lines, titleStyle.Render(title))
	for _, p := range paths {
		lines = append(lines, "  "+p)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// Muted renders secondary text.
func Muted(s string) string {
	return mutedStyle.Render(s)
}

// Table renders rows as plain aligned columns under a styled header.
func Table(headers []string, rows [][]string) string {
	cell := lipgloss.NewStyle().PaddingRight(2)
	header := titleStyle.PaddingRight(2)
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	return t.Render()
}
