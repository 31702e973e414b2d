package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Step completed successfully
	SymbolFail     = "✗" // Step failed
	SymbolWarning  = "⚠" // Something needs attention
	SymbolPending  = "○" // Step not yet started
	SymbolProgress = "◐" // Step in progress
	SymbolComplete = "●" // Step done (alternative to success)
	SymbolSkipped  = "⊘" // Step skipped
)
