package printer

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
)

// Style definitions for consistent console output across the application.
var (
	faintStyle   = lipgloss.NewStyle().Faint(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // Green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // Red
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // Yellow
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // Cyan
)

var (
	mu     sync.RWMutex
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput redirects normal output to out and diagnostics to errOut.
// The returned function restores the previous writers.
func SetOutput(out, errOut io.Writer) (restore func()) {
	mu.Lock()
	defer mu.Unlock()
	prevOut, prevErr := stdout, stderr
	stdout, stderr = out, errOut
	return func() {
		mu.Lock()
		defer mu.Unlock()
		stdout, stderr = prevOut, prevErr
	}
}

// SetNoColor disables colors and text attributes for all styles.
func SetNoColor(disabled bool) {
	if disabled {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.EnvColorProfile())
}

func out() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return stdout
}

func errOut() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return stderr
}

// Render functions return styled strings without printing.

// Faint returns text with faint styling.
func Faint(text string) string {
	return faintStyle.Render(text)
}

// Bold returns text with bold styling.
func Bold(text string) string {
	return boldStyle.Render(text)
}

// Success returns text with success (green) styling.
func Success(text string) string {
	return successStyle.Render(text)
}

// Error returns text with error (red) styling.
func Error(text string) string {
	return errorStyle.Render(text)
}

// Warning returns text with warning (yellow) styling.
func Warning(text string) string {
	return warningStyle.Render(text)
}

// Info returns text with info (cyan) styling.
func Info(text string) string {
	return infoStyle.Render(text)
}

// Print functions write styled text with a newline. Errors and warnings go to
// stderr so stdout stays usable in pipelines.

// Println prints unstyled text to stdout.
func Println(text string) {
	fmt.Fprintln(out(), text)
}

// PrintFaint prints text with faint styling.
func PrintFaint(text string) {
	fmt.Fprintln(out(), Faint(text))
}

// PrintBold prints text with bold styling.
func PrintBold(text string) {
	fmt.Fprintln(out(), Bold(text))
}

// PrintSuccess prints text with success (green) styling.
func PrintSuccess(text string) {
	fmt.Fprintln(out(), Success(text))
}

// PrintInfo prints text with info (cyan) styling.
func PrintInfo(text string) {
	fmt.Fprintln(out(), Info(text))
}

// PrintError prints text with error (red) styling to stderr.
func PrintError(text string) {
	fmt.Fprintln(errOut(), Error(text))
}

// PrintWarning prints text with warning (yellow) styling to stderr.
func PrintWarning(text string) {
	fmt.Fprintln(errOut(), Warning(text))
}

// Table renders rows under a bold header with a rounded border.
func Table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(faintStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true)
			}
			return style
		}).
		String()
}

// PrintTable prints a table to stdout.
func PrintTable(headers []string, rows [][]string) {
	fmt.Fprintln(out(), Table(headers, rows))
}
