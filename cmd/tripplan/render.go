package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"travelplanner/planner"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"gopkg.in/yaml.v3"
)

// Color palette
var (
	ColorSuccess = lipgloss.Color("#00D787")
	ColorError   = lipgloss.Color("#FF5F87")
	ColorWarning = lipgloss.Color("#FFAF00")
	ColorInfo    = lipgloss.Color("#5FAFFF")
	ColorMuted   = lipgloss.Color("#888888")
)

var (
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleBold    = lipgloss.NewStyle().Bold(true)
	StyleTitle   = lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
)

type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	case "yml":
		return formatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

const defaultWidth = 80

// terminalWidth returns the width of w when it is a terminal, or 80.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return defaultWidth
	}
	width, _, err := term.GetSize(f.Fd())
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

func boxStyle(border lipgloss.Color, width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width - 2)
}

func statusColor(status string) lipgloss.Color {
	switch status {
	case planner.StatusOK:
		return ColorSuccess
	case planner.StatusSkipped:
		return ColorWarning
	}
	return ColorError
}

func render(w io.Writer, plan *planner.Plan, format outputFormat) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(plan); err != nil {
			return err
		}
		return enc.Close()
	}
	renderText(w, plan, terminalWidth(w))
	return nil
}

func renderText(w io.Writer, plan *planner.Plan, width int) {
	fmt.Fprintln(w, StyleTitle.Render("○ "+plan.Summary))
	fmt.Fprintln(w)

	for _, s := range plan.Sections {
		heading := StyleBold.Render(s.Heading)
		if s.Status == planner.StatusFailed {
			heading = StyleError.Render(s.Heading)
		}
		body := heading + "\n\n" + s.Body
		if s.PromptTokens > 0 {
			body += "\n\n" + StyleMuted.Render(fmt.Sprintf("prompt: %d tokens", s.PromptTokens))
		}
		fmt.Fprintln(w, boxStyle(statusColor(s.Status), width).Render(body))
	}

	switch {
	case plan.Map != nil:
		fmt.Fprintf(w, "🗺️  %s (%.4f, %.4f)\n", plan.Map.Label, plan.Map.Lat, plan.Map.Lon)
		fmt.Fprintln(w, StyleMuted.Render(plan.Map.URL))
	case plan.MapWarning != "":
		fmt.Fprintln(w, StyleWarning.Render("⚠️ "+plan.MapWarning))
	}
}
