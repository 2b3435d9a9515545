package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"github.com/dmitrijs2005/aither/internal/client/models"
)

const (
	wrapWidth  = 100
	titleWidth = 40
)

// renderer turns assistant Markdown into terminal output. A nil md prints the
// text unchanged.
type renderer struct {
	md *glamour.TermRenderer
}

func newRenderer(enabled bool) *renderer {
	if !enabled {
		return &renderer{}
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return &renderer{}
	}
	return &renderer{md: md}
}

func (r *renderer) Markdown(text string) string {
	if r == nil || r.md == nil {
		return text
	}
	out, err := r.md.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// formatMessage renders one message of a session history.
func (r *renderer) formatMessage(m models.Message, userName string) string {
	ts := m.Time().Format("15:04")
	if m.Role == models.MessageRoleAssistant {
		return fmt.Sprintf("[%s] AITHER:\n%s", ts, r.Markdown(m.Content))
	}
	return fmt.Sprintf("[%s] %s: %s", ts, userName, m.Content)
}

// listLine formats a row of the session listing. Titles are cut to a fixed
// display width so wide runes keep the columns aligned.
func listLine(n int, s models.ChatSession, active bool) string {
	marker := " "
	if active {
		marker = "*"
	}
	title := runewidth.FillRight(runewidth.Truncate(s.Title, titleWidth, "…"), titleWidth)
	return fmt.Sprintf("%s%3d  %s  %s  (%d msgs)", marker, n, title, s.Updated().Format(time.DateTime), len(s.Messages))
}

// shortRef keeps long image references (data URLs mostly) readable.
func shortRef(ref string) string {
	if ref == "" {
		return "(none)"
	}
	return runewidth.Truncate(ref, 60, "…")
}
