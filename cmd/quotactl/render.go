package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"codeberg.org/kartuli/server/internal/quota"
)

var (
	colorWhite     = lipgloss.Color("#FFFFFF")
	colorLightGray = lipgloss.Color("#CCCCCC")
	colorGray      = lipgloss.Color("#888888")
	colorGreen     = lipgloss.Color("#00FF00")
	colorYellow    = lipgloss.Color("#FFFF00")
	colorRed       = lipgloss.Color("#FF0000")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Width(10)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorLightGray)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().Foreground(colorGreen)
	warningStyle = lipgloss.NewStyle().Foreground(colorYellow)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed)
)

// picks a color by how much of the allowance is spent
func meterStyle(used, limit int) lipgloss.Style {
	switch {
	case limit <= 0 || used >= limit:
		return errorStyle
	case used*100 >= limit*80:
		return warningStyle
	default:
		return successStyle
	}
}

func meterRow(label string, used, limit int) string {
	return lipgloss.JoinHorizontal(lipgloss.Left,
		labelStyle.Render(label),
		meterStyle(used, limit).Render(fmt.Sprintf("%d / %d", used, limit)),
	)
}

func renderUsage(actor quota.Actor, keys quota.PeriodKeys, decision *quota.Decision, history []quota.DailyUsage) string {
	title := string(actor.Type) + " " + actor.ID
	if actor.Type == quota.ActorUser {
		title += " (" + string(actor.Plan) + ")"
	}

	rows := []string{
		meterRow(keys.Day, decision.Usage.Daily, decision.Limits.Daily),
		meterRow(keys.Month, decision.Usage.Monthly, decision.Limits.Monthly),
		meterRow("images", decision.Usage.Images, decision.Limits.Images),
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(strings.Join(rows, "\n")))

	if len(history) > 0 {
		lines := make([]string, 0, len(history))
		for _, day := range history {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Left,
				labelStyle.Render(day.Date),
				valueStyle.Render(fmt.Sprintf("%d tokens", day.Tokens)),
			))
		}

		b.WriteString("\n")
		b.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
	}

	return b.String()
}
