package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/ui/theme"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 80

// KeyHint is a suggested next command shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// RenderHeader renders the learner bar: name on the left, XP, level and
// streak on the right.
func RenderHeader(l *course.Learner, width int) string {
	left := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render(l.Name)
	if l.Role != "" {
		left += theme.Subtitle.Render("  " + l.Role)
	}

	g := l.Gamification
	right := theme.Badge.Render(fmt.Sprintf("◆ %d XP", g.XP)) +
		theme.Subtitle.Render("   ") +
		theme.Active.Render(fmt.Sprintf("Lv %d", g.Level)) +
		theme.Subtitle.Render("   ") +
		lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("★ %d day", g.Streak))

	innerWidth := max(width-4, 0) // border and padding
	gap := max(innerWidth-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return theme.Card.
		Width(width).
		Render(left + strings.Repeat(" ", gap) + right)
}

// RenderFooter renders the footer with command hints.
func RenderFooter(hints []KeyHint, width int) string {
	if len(hints) == 0 {
		return ""
	}
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, theme.Body.Bold(true).Render(h.Key)+" "+theme.Subtitle.Render(h.Description))
	}
	return lipgloss.NewStyle().Width(width).Render("  " + strings.Join(parts, "   "))
}

// RenderFrame stacks header, content and footer, skipping empty parts.
func RenderFrame(header, content, footer string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{header, content, footer} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
