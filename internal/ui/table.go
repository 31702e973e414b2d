package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableStyle provides consistent styling for tables across the CLI.
type TableStyle struct {
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Selected lipgloss.Style
	Border   lipgloss.Style
}

// DefaultTableStyle returns the default table styling.
func DefaultTableStyle() TableStyle {
	return TableStyle{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(string(ColorPrimary))),
		Cell: lipgloss.NewStyle().
			Foreground(lipgloss.Color(string(ColorPrimary))),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(string(ColorPrimary))).
			Background(lipgloss.Color(string(ColorMuted))),
		Border: lipgloss.NewStyle().
			Foreground(lipgloss.Color(string(ColorMuted))),
	}
}

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(string(ColorMuted))).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color(string(ColorPrimary)))
	s.Cell = s.Cell.
		Foreground(lipgloss.Color(string(ColorPrimary)))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(string(ColorPrimary))).
		Background(lipgloss.Color(string(ColorMuted))).
		Bold(false)

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
// This is for CLI output (not TUI), producing a simple formatted table.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	t := NewTable(columns, tableRows)
	return t.View()
}

// KeyTableRow represents a row in the key listing table.
type KeyTableRow struct {
	Name   string // Key file name (e.g., "github_work")
	Type   string // Algorithm and size (e.g., "ed25519 256")
	Alias  string // SSH config alias, empty when none is wired up
	Loaded bool   // Whether the key is loaded in the ssh-agent
}

// RenderKeyTable renders the key listing as a formatted table.
func RenderKeyTable(rows []KeyTableRow) string {
	if len(rows) == 0 {
		return "No keys yet. Run 'gitkeys create' to generate one."
	}

	successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(string(ColorSuccess)))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(string(ColorMuted)))

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(string(ColorPrimary))).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.Color(string(ColorMuted)))

	var output string
	output += headerStyle.Render("  NAME                       TYPE           ALIAS                            AGENT") + "\n"

	for _, row := range rows {
		alias := row.Alias
		if alias == "" {
			alias = mutedStyle.Render("-")
		}

		var agentMark string
		if row.Loaded {
			agentMark = successStyle.Render(SymbolComplete)
		} else {
			agentMark = mutedStyle.Render(SymbolPending)
		}

		rowLine := "  " +
			padRight(row.Name, 27) +
			padRight(mutedStyle.Render(row.Type), 15) +
			padRight(alias, 33) +
			agentMark
		output += rowLine + "\n"
	}

	return output
}

// ProbeTableRow represents a row in the connection test output.
type ProbeTableRow struct {
	Alias   string // Destination alias or host
	Success bool
	Detail  string        // Greeting snippet on success, failure reason otherwise
	Elapsed time.Duration // Probe round-trip time, zero when unknown
}

// RenderProbeTable renders connection test results as a formatted table.
func RenderProbeTable(rows []ProbeTableRow) string {
	if len(rows) == 0 {
		return "Nothing to test"
	}

	successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(string(ColorSuccess)))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(string(ColorError)))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(string(ColorMuted)))

	var output string
	for _, row := range rows {
		var statusIcon string
		if row.Success {
			statusIcon = successStyle.Render(SymbolSuccess)
		} else {
			statusIcon = errorStyle.Render(SymbolFail)
		}

		line := statusIcon + " " + padRight(row.Alias, 33) + row.Detail
		if row.Elapsed > 0 {
			line += " " + mutedStyle.Render(formatDuration(row.Elapsed))
		}
		output += line + "\n"
	}

	return output
}

// DoctorCheckRow represents a row in the doctor diagnostic table.
type DoctorCheckRow struct {
	Status     string // "pass", "warn", "fail"
	Category   string // Check category
	Message    string // Check result message
	Suggestion string // Suggestion for fixing (if failed)
}

// RenderDoctorTable renders doctor check results as a formatted table.
func RenderDoctorTable(rows []DoctorCheckRow) string {
	if len(rows) == 0 {
		return "No checks to display"
	}

	successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(string(ColorSuccess)))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(string(ColorError)))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(string(ColorWarning)))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(string(ColorMuted)))
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(string(ColorPrimary)))

	var output string

	// Group by category, preserving first-seen order
	categories := make(map[string][]DoctorCheckRow)
	categoryOrder := []string{}
	for _, row := range rows {
		if _, exists := categories[row.Category]; !exists {
			categoryOrder = append(categoryOrder, row.Category)
		}
		categories[row.Category] = append(categories[row.Category], row)
	}

	for _, cat := range categoryOrder {
		output += headerStyle.Render(cat) + "\n"

		for _, row := range categories[cat] {
			var statusIcon string
			switch row.Status {
			case "pass":
				statusIcon = successStyle.Render(SymbolComplete)
			case "warn":
				statusIcon = warnStyle.Render(SymbolComplete)
			case "fail":
				statusIcon = errorStyle.Render(SymbolFail)
			default:
				statusIcon = mutedStyle.Render(SymbolPending)
			}

			output += "  " + statusIcon + " " + row.Message + "\n"

			if row.Suggestion != "" && row.Status != "pass" {
				output += "    " + mutedStyle.Render(row.Suggestion) + "\n"
			}
		}
		output += "\n"
	}

	return output
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	// Account for ANSI codes when calculating visible length
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	padding := width - visibleLen
	for i := 0; i < padding; i++ {
		s += " "
	}
	return s
}
