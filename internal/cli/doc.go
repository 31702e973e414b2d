// Package cli implements the gitkeys command-line interface.
//
// The package is organized around Cobra commands, with each command
// delegating to operation functions for the actual work. The general
// structure follows a clean separation between:
//
//   - Command definitions (cobra.Command instances in commands.go)
//   - Operation orchestration (Create, Test, Remove, ListKeys)
//   - Implementation details (in other internal packages)
//
// # Command Structure
//
// The root command is "gitkeys" with subcommands for each operation:
//
//	gitkeys create      - Generate a key and wire it up
//	gitkeys list        - List stored keys
//	gitkeys test        - Probe platform authentication
//	gitkeys remove      - Delete a key and its wiring
//	gitkeys agent       - Manage agent identities
//	gitkeys backup      - Archive the key store
//	gitkeys report      - Snapshot keys, config, and agent state
//	gitkeys export      - Collect public keys for transfer
//	gitkeys doctor      - Diagnose the environment
//
// A bare "gitkeys" on a terminal opens the numbered menu instead; piped
// invocations print usage. Commands taking a key accept it as a flag or
// argument, or fall back to an interactive picker on a terminal.
//
// # Composition Root
//
// newApp builds the App bundle every command works through: settings,
// the process runner, the key store, and the config editor. Commands
// never construct collaborators themselves, which keeps the operation
// functions testable with fakes.
//
// # Output Modes
//
// Commands with a --json flag emit a JSONEnvelope on stdout; everything
// else renders styled text. Warnings and errors go to stderr in both
// modes so captured stdout stays parseable.
package cli
