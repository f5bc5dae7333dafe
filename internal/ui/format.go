// ABOUTME: Terminal formatting for notes CLI output.
// ABOUTME: Uses glamour for markdown and fatih/color for styling.

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/harper/notes/internal/models"
)

var (
	faint  = color.New(color.Faint).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

const timeLayout = "2006-01-02 15:04"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func FormatNoteListItem(note models.Note) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("  %s  %s\n", faint(note.ShortID()), bold(note.Title)))

	if preview := Preview(note.Content, 60); preview != "" {
		sb.WriteString(fmt.Sprintf("         %s\n", preview))
	}

	if !note.UpdatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("         %s %s\n",
			faint("Updated:"),
			faint(formatTime(note.UpdatedAt))))
	}

	return sb.String()
}

// FormatNoteList renders notes in collection order, or a hint when empty.
func FormatNoteList(notes []models.Note) string {
	if len(notes) == 0 {
		return faint("No notes yet. Create one with 'notes add'.") + "\n"
	}
	var sb strings.Builder
	for _, n := range notes {
		sb.WriteString(FormatNoteListItem(n))
	}
	sb.WriteString(faint(fmt.Sprintf("\n%d note(s)", len(notes))) + "\n")
	return sb.String()
}

// Preview returns the first line of content cut to max runes.
func Preview(content string, max int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(content), "\n")
	r := []rune(line)
	if len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return line
}

func FormatNoteContent(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, nil //nolint:nilerr // fall back to raw content
	}

	out, err := renderer.Render(content)
	if err != nil {
		return content, nil //nolint:nilerr // fall back to raw content
	}
	return out, nil
}

func FormatNoteHeader(note models.Note) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s\n", bold(note.Title)))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("ID:"), faint(note.ID)))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Created:"), faint(formatTime(note.CreatedAt))))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Updated:"), faint(formatTime(note.UpdatedAt))))

	sb.WriteString(Separator())
	return sb.String()
}

// FormatStatus renders the output of the status command.
func FormatStatus(apiURL, backend, storePath string, authenticated bool) string {
	var sb strings.Builder
	session := yellow("logged out")
	if authenticated {
		session = cyan("logged in")
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("API:    "), apiURL))
	sb.WriteString(fmt.Sprintf("%s %s %s\n", faint("Store:  "), backend, faint("("+storePath+")")))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Session:"), session))
	return sb.String()
}

func Separator() string {
	return faint(strings.Repeat("─", 50)) + "\n"
}

func Success(msg string) string {
	return color.New(color.FgGreen).Sprint("✓ ") + msg
}

func Error(msg string) string {
	return color.New(color.FgRed).Sprint("✗ ") + msg
}

// Notice formats an informational message such as a session expiry.
func Notice(msg string) string {
	return yellow("! ") + msg
}
