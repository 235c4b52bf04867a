package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/expertdesk/internal/topic"
)

func (m *model) View() string {
	parts := []string{
		m.heroView(),
		m.selectorView(),
		m.questionView(),
		m.outputView(),
		m.footerView(),
	}
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	lines := []string{
		heroTitleStyle.Render(heroTitle),
		taglineStyle.Render(heroTagline),
	}
	for _, line := range instructions {
		lines = append(lines, helperStyle.Render(line))
	}
	return strings.Join(lines, "\n")
}

func (m *model) selectorView() string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Which field is your question about?"))
	b.WriteRune('\n')
	current := m.state.Topic()
	if !current.Selected() {
		b.WriteString(helperStyle.Render("  " + topic.SentinelLabel))
		b.WriteRune('\n')
	}
	for idx, t := range topic.All() {
		mark := "( )"
		if t == current {
			mark = "(•)"
		}
		label := fmt.Sprintf("%s %d. %s", mark, idx+1, t.Label())
		switch {
		case m.focus == focusSelector && idx == m.cursor:
			b.WriteString(currentLineStyle.Render("▸ " + label))
		case t == current:
			b.WriteString(selectedStyle.Render("  " + label))
		default:
			b.WriteString("  " + label)
		}
		if idx < len(topic.All())-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

// questionView renders nothing until a topic is chosen.
func (m *model) questionView() string {
	view := m.state.View()
	if !view.InputVisible {
		return ""
	}
	askKey := keyStyle.Render("[Enter] Ask")
	if !view.CanSubmit {
		askKey = disabledKeyStyle.Render("[Enter] Ask")
	}
	return joinLines(
		sectionHeaderStyle.Render("Ask away"),
		m.input.View(),
		askKey,
	)
}

func (m *model) outputView() string {
	var lines []string
	if m.errorMessage != "" {
		lines = append(lines, errorStyle.Render(m.errorMessage))
		if m.errorDetail != "" {
			lines = append(lines, helperStyle.Render(wordwrap.String(m.errorDetail, m.layout.wrapWidth())))
		}
	}
	if m.asked != nil {
		wrap := m.layout.wrapWidth()
		lines = append(lines,
			helperStyle.Render("Topic: "+m.asked.Topic.Label()),
			helperStyle.Render(wordwrap.String("Question: "+m.asked.Question, wrap)),
		)
		if m.stage == stageCalling {
			lines = append(lines, fmt.Sprintf("%s %s", m.spinner.View(), "Generating an answer…"))
		}
		if m.answer != "" {
			body := wordwrap.String(m.answer, wrap)
			lines = append(lines, answerBoxStyle.Width(m.layout.answerWidth).Render(body))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

func (m *model) footerView() string {
	stats := []string{}
	if m.config.Generator != nil {
		stats = append(stats, fmt.Sprintf("Mode %s", m.config.Generator.Mode()))
	}
	if m.config.ClientName != "" {
		stats = append(stats, m.config.ClientName)
	}
	if badge := m.jobBadge(); badge != "" {
		stats = append(stats, badge)
	}
	parts := []string{}
	if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	if len(stats) > 0 {
		parts = append(parts, statusBarStyle.Render(strings.Join(stats, "  •  ")))
	}
	return strings.Join(parts, "\n")
}

func (m *model) jobBadge() string {
	switch m.lastJob.Status {
	case jobStatusRunning:
		return "LLM working…"
	case jobStatusSucceeded:
		return fmt.Sprintf("Last answer %s", m.lastJob.Duration.Round(100*time.Millisecond))
	case jobStatusFailed:
		return "Last answer failed"
	default:
		return ""
	}
}

func joinLines(parts ...string) string {
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
