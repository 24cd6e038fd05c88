package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"namematcher/matching"
)

const (
	colorPrimary = "#7D56F4"
	colorSuccess = "#04B575"
	colorWarning = "#FFB86C"
	colorError   = "#FF5555"
	colorInfo    = "#626262"
	colorBorder  = "#874BFD"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary)).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorInfo)).
			Width(18)

	valueStyle = lipgloss.NewStyle().Bold(true)

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorSuccess))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorWarning))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorError))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(1, 2)
)

// renderSummary рамка со статистикой пакета
func renderSummary(batch *matching.BatchResult, sourceID, output string) string {
	summary := batch.Summary

	rows := []struct {
		label string
		value string
		style lipgloss.Style
	}{
		{"Source", sourceID, valueStyle},
		{"Output", output, valueStyle},
		{"Occurrences", fmt.Sprint(summary.TotalOccurrences), valueStyle},
		{"Unique names", fmt.Sprint(summary.UniqueKeys), valueStyle},
		{"Lookups", fmt.Sprint(summary.Lookups), valueStyle},
		{"Matched", fmt.Sprint(summary.Matched), successStyle},
		{"Below threshold", fmt.Sprint(summary.BelowThreshold), warningStyle},
		{"Not found", fmt.Sprint(summary.NotFound), warningStyle},
		{"Lookup failures", fmt.Sprint(summary.LookupFailures), errorStyle},
		{"Skipped", fmt.Sprint(summary.Skipped), warningStyle},
		{"Match rate", fmt.Sprintf("%.2f%%", summary.MatchRate), valueStyle},
		{"Duration", summary.Duration.Round(time.Millisecond).String(), valueStyle},
	}

	lines := make([]string, 0, len(rows)+1)
	title := "Matching summary"
	if summary.Cancelled {
		title += " (cancelled)"
	}
	lines = append(lines, titleStyle.Render(title))
	for _, row := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(row.label),
			row.style.Render(row.value)))
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}

// renderResults строка на каждое вхождение: название, совпадение, оценка
func renderResults(results []matching.MatchResult) string {
	var b strings.Builder
	for _, result := range results {
		style := warningStyle
		switch result.Outcome {
		case matching.OutcomeMatched:
			style = successStyle
		case matching.OutcomeLookupFailed:
			style = errorStyle
		}

		line := fmt.Sprintf("%-40s %-16s", result.Candidate.Text, result.Outcome)
		if result.MatchedName != nil && result.Score != nil {
			line += fmt.Sprintf(" %s (%.2f)", *result.MatchedName, *result.Score)
		}
		if result.Error != "" {
			line += " " + result.Error
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
