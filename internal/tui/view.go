package tui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"github.com/medassist/medchat/internal/model/assistant"
	"github.com/medassist/medchat/internal/model/chat"
)

func (m Model) View() string {
	if m.vp == nil {
		return "\n  " + dimStyle.Render("Yükleniyor...")
	}

	var b strings.Builder

	badges := make([]string, 0, len(m.profile.Badges))
	for _, badge := range m.profile.Badges {
		badges = append(badges, badgeStyle.Render(badge))
	}
	b.WriteString(titleStyle.Render(m.profile.Name) + "  " + strings.Join(badges, " "))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.profile.Description))
	b.WriteString("\n")
	b.WriteString("🩺 " + lipgloss.NewStyle().Bold(true).Render(m.profile.BotName) + "  " + onlineStyle.Render(m.profile.Status))
	b.WriteString("\n\n")

	b.WriteString(m.vp.View())
	b.WriteString("\n")

	if m.loading {
		b.WriteString("🩺 " + dimStyle.Render(m.spinner.View()))
	}
	b.WriteString("\n")

	box := inputBoxStyle
	if m.loading {
		box = disabledBox
	}
	b.WriteString(box.Width(max(m.width-2, 10)).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(m.profile.Disclaimer))

	return b.String()
}

// renderMessages lays out bot messages on the left and user messages on the
// right. Text is shown as-is; control characters are dropped.
func renderMessages(messages []chat.Message, profile assistant.Profile, width int) string {
	bubbleWidth := width * 3 / 4
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}

		text := sanitize(msg.Text)
		if msg.IsBot {
			meta := dimStyle.Render("🩺 " + profile.BotName + " · " + msg.TimeLabel())
			bubble := botBubbleStyle.Width(bubbleWidth).Render(text)
			b.WriteString(lipgloss.JoinVertical(lipgloss.Left, meta, bubble))
			continue
		}

		meta := dimStyle.Render(msg.TimeLabel() + " · Siz 👤")
		bubble := userBubbleStyle.MaxWidth(bubbleWidth).Render(text)
		block := lipgloss.JoinVertical(lipgloss.Right, meta, bubble)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right, block))
	}
	return b.String()
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, s)
}
