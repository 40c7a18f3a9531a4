// Package ladderview draws submission step ladders for terminals.
package ladderview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/noah-isme/gema-steps-api/internal/steps"
)

var (
	CompleteColor    = lipgloss.Color("#10B981") // Green
	InProgressColor  = lipgloss.Color("#60A5FA") // Blue
	ButtonColor      = lipgloss.Color("#A78BFA") // Purple
	UnavailableColor = lipgloss.Color("#F87171") // Red
	MutedColor       = lipgloss.Color("#9CA3AF") // Gray

	Summary = lipgloss.NewStyle().Bold(true)

	Button = lipgloss.NewStyle().
		Bold(true).
		Foreground(ButtonColor).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ButtonColor).
		Padding(0, 1)
)

var glyphs = map[steps.StepStatus]string{
	steps.StatusComplete:    "●",
	steps.StatusInProgress:  "◐",
	steps.StatusIncomplete:  "○",
	steps.StatusUnavailable: "⊘",
	steps.StatusButton:      "+",
}

func statusStyle(status steps.StepStatus) lipgloss.Style {
	switch status {
	case steps.StatusComplete:
		return lipgloss.NewStyle().Foreground(CompleteColor)
	case steps.StatusInProgress:
		return lipgloss.NewStyle().Foreground(InProgressColor).Bold(true)
	case steps.StatusUnavailable:
		return lipgloss.NewStyle().Foreground(UnavailableColor)
	case steps.StatusButton:
		return lipgloss.NewStyle().Foreground(ButtonColor)
	default:
		return lipgloss.NewStyle().Foreground(MutedColor)
	}
}

// Render draws the ladder. Collapsed ladders show the bold summary label
// followed by a single row of step glyphs without labels.
func Render(ladder steps.Ladder) string {
	if ladder.Collapsed {
		return lipgloss.JoinVertical(lipgloss.Left,
			Summary.Render(ladder.Summary.Text()),
			renderCompact(ladder.Steps),
		)
	}
	return renderExpanded(ladder.Steps)
}

func renderCompact(items []steps.Step) string {
	parts := make([]string, 0, len(items))
	for _, step := range items {
		parts = append(parts, statusStyle(step.Status).Render(glyphs[step.Status]))
	}
	return strings.Join(parts, " ─ ")
}

func renderExpanded(items []steps.Step) string {
	lines := make([]string, 0, len(items))
	for _, step := range items {
		if step.Status == steps.StatusButton {
			lines = append(lines, Button.Render(step.Label.Text()))
			continue
		}
		style := statusStyle(step.Status)
		lines = append(lines, style.Render(glyphs[step.Status]+" "+step.Label.Text()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
