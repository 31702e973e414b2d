package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/gitkeys/internal/doctor"
	"github.com/rileyhilliard/gitkeys/internal/ui"
	"github.com/spf13/cobra"
)

var (
	doctorJSON bool
	doctorFix  bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the environment",
	Long: `Check that the external SSH tooling, the ssh-agent, and the key store
permissions are in working order.

Examples:
  gitkeys doctor
  gitkeys doctor --fix
  gitkeys doctor --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand()
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
	rootCmd.AddCommand(doctorCmd)
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand implements the doctor command logic.
func doctorCommand() error {
	app, err := newApp()
	if err != nil {
		if doctorJSON {
			return WriteJSONFromError(os.Stdout, err)
		}
		return err
	}

	checks := doctor.NewChecks(app.Settings, app.Runner, app.Agent)
	results := doctor.RunAll(checks)

	if doctorFix {
		results = attemptFixes(checks, results)
	}

	if doctorJSON {
		return outputDoctorJSON(checks, results)
	}
	return outputDoctorText(checks, results)
}

// attemptFixes tries to fix issues where possible.
func attemptFixes(checks []doctor.Check, results []doctor.CheckResult) []doctor.CheckResult {
	for i, result := range results {
		if result.Fixable && (result.Status == doctor.StatusFail || result.Status == doctor.StatusWarn) {
			if err := checks[i].Fix(); err == nil {
				// Re-run the check to see if it's fixed
				results[i] = checks[i].Run()
			}
		}
	}
	return results
}

// outputDoctorJSON outputs results in JSON format.
func outputDoctorJSON(checks []doctor.Check, results []doctor.CheckResult) error {
	// Group by category
	grouped := make(map[string][]doctor.CheckResult)
	categoryOrder := []string{}

	for i, check := range checks {
		cat := check.Category()
		if _, exists := grouped[cat]; !exists {
			categoryOrder = append(categoryOrder, cat)
		}
		grouped[cat] = append(grouped[cat], results[i])
	}

	output := DoctorOutput{
		Categories: make([]CategoryOutput, 0, len(categoryOrder)),
	}
	for _, cat := range categoryOrder {
		output.Categories = append(output.Categories, CategoryOutput{
			Name:    cat,
			Results: grouped[cat],
		})
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		Fixable:  doctor.FixableCount(results),
		AllClear: counts[doctor.StatusWarn] == 0 && counts[doctor.StatusFail] == 0,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// outputDoctorText outputs results in human-readable format.
//
//nolint:unparam // error return reserved for future use
func outputDoctorText(checks []doctor.Check, results []doctor.CheckResult) error {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	warnStyle := lipgloss.NewStyle().Foreground(ui.ColorWarning)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Println()
	fmt.Println(headerStyle.Render("gitkeys diagnostic report"))
	fmt.Println()

	// Group checks by category
	categoryOrder := []string{"TOOLS", "AGENT", "PERMISSIONS"}
	grouped := make(map[string][]int) // category -> indices

	for i, check := range checks {
		cat := check.Category()
		grouped[cat] = append(grouped[cat], i)
	}

	for _, category := range categoryOrder {
		indices, ok := grouped[category]
		if !ok || len(indices) == 0 {
			continue
		}

		fmt.Println(headerStyle.Render(category))
		for _, idx := range indices {
			renderCheckResult(results[idx], successStyle, errorStyle, warnStyle, mutedStyle)
		}
		fmt.Println()
	}

	fmt.Println(strings.Repeat("━", 60))
	fmt.Println()

	counts := doctor.CountByStatus(results)
	if counts[doctor.StatusWarn] == 0 && counts[doctor.StatusFail] == 0 {
		fmt.Printf("%s %s\n", successStyle.Render(ui.SymbolSuccess), doctor.Summary(results))
	} else {
		fmt.Printf("%s %s\n", errorStyle.Render(ui.SymbolFail), doctor.Summary(results))

		fixable := doctor.FixableCount(results)
		if fixable > 0 && !doctorFix {
			fmt.Println()
			fmt.Printf("  Run with %s to attempt automatic fixes where possible.\n",
				mutedStyle.Render("--fix"))
		}
	}

	fmt.Println()
	return nil
}

// renderCheckResult renders a single check result.
func renderCheckResult(result doctor.CheckResult, successStyle, errorStyle, warnStyle, mutedStyle lipgloss.Style) {
	var symbol string
	var style lipgloss.Style

	switch result.Status {
	case doctor.StatusPass:
		symbol = ui.SymbolComplete
		style = successStyle
	case doctor.StatusWarn:
		symbol = ui.SymbolComplete // Still shows as done, but with warning styling
		style = warnStyle
	case doctor.StatusFail:
		symbol = ui.SymbolFail
		style = errorStyle
	}

	fmt.Printf("  %s %s\n", style.Render(symbol), result.Message)

	if result.Suggestion != "" && result.Status != doctor.StatusPass {
		for _, line := range strings.Split(result.Suggestion, "\n") {
			fmt.Printf("    %s\n", mutedStyle.Render(line))
		}
	}
}
