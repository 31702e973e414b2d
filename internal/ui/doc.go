// Package ui provides terminal UI components for gitkeys CLI output.
//
// The package includes spinners, tables, an interactive key picker, and
// styled text output using the Lip Gloss library for consistent terminal
// styling across all commands.
//
// # Color Scheme
//
// Colors are defined as ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Successful operations
//	ColorError     (red)    - Failures and errors
//	ColorWarning   (yellow) - Warnings and skipped items
//	ColorInfo      (cyan)   - Informational messages
//	ColorMuted     (gray)   - Secondary text, timing info
//	ColorSecondary (blue)   - In-progress indicators
//
// Use DisableColors() to switch to monochrome output (for --no-color or
// when stdout is not a terminal).
//
// # Symbols
//
// Unicode symbols provide visual status indicators:
//
//	SymbolSuccess  (checkmark)  - Step completed successfully
//	SymbolFail     (X)          - Step failed
//	SymbolPending  (circle)     - Step not yet started
//	SymbolProgress (half-fill)  - Step in progress
//	SymbolComplete (filled)     - Step done (alternative)
//	SymbolSkipped  (slashed)    - Step skipped
//
// # Spinner Usage
//
// The Spinner type provides an animated indicator for operations:
//
//	s := ui.NewSpinner("Generating key")
//	s.Start()
//	// ... do work ...
//	s.Success() // or s.Fail() or s.Skip()
//
// The spinner handles terminal output, clearing lines, and timing display.
//
// # Tables
//
// RenderKeyTable, RenderProbeTable, and RenderDoctorTable format command
// output as aligned tables with status symbols. For interactive TUI lists,
// PickKey wraps a Bubble Tea list component for selecting a key by name.
package ui
