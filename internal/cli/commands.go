package cli

import (
	"os"

	"github.com/rileyhilliard/gitkeys/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	createPlatformFlag string
	createNameFlag     string
	createEmailFlag    string
	createTypeFlag     string
	createHostFlag     string
	createForce        bool
	createNoAgent      bool
	createNoConfig     bool
	listJSON           bool
	testNameFlag       string
	testAll            bool
	testTimeoutFlag    string
	removeKeepConfig   bool
	reportJSON         bool
)

// createCmd generates a key pair and wires it up end to end
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate an SSH key for a Git platform",
	Long: `Generate an SSH key pair for a hosted Git platform, register it with
your ssh-agent, and add a host alias to the managed SSH config.

The key is written as <platform>_<name> with no passphrase, so Git
operations using it never prompt. The alias lets you pin repositories
to a specific identity:

  git clone git@github.com-work:myorg/myrepo.git

Examples:
  gitkeys create --platform github --name work
  gitkeys create --platform gitlab --name personal --email me@example.com
  gitkeys create --platform gitlab-selfhosted --name work --host gitlab.corp.example
  gitkeys create --platform bitbucket --name old --type rsa`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return createCommand()
	},
}

// listCmd prints every key in the store
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all keys in the store",
	Long: `List every key pair in the key directory with its algorithm, the
config alias pointing at it, and whether it is loaded in the ssh-agent.

Examples:
  gitkeys list
  gitkeys list --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listCommand()
	},
}

// testCmd probes platform connections with the stored keys
var testCmd = &cobra.Command{
	Use:   "test [platform|alias]",
	Short: "Test SSH authentication against a platform",
	Long: `Probe a Git platform over SSH to verify a key authenticates.

Git platforms greet a working key and refuse a shell; that counts as
success. With a platform argument, every key for that platform is
probed. With an alias, the alias's host and key are probed directly.

Examples:
  gitkeys test github
  gitkeys test github.com-work
  gitkeys test --name github_work
  gitkeys test --all
  gitkeys test github --timeout 30s`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := ""
		if len(args) > 0 {
			target = args[0]
		}
		return testCommand(target)
	},
}

// removeCmd deletes a key and everything pointing at it
var removeCmd = &cobra.Command{
	Use:   "remove <key-name>",
	Short: "Remove a key pair and its wiring",
	Long: `Delete a key pair from the store, unload it from the ssh-agent, and
remove any config blocks referencing it.

Examples:
  gitkeys remove github_work
  gitkeys remove github_work --keep-config`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		return removeCommand(name)
	},
}

// backupCmd archives the whole key store
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Archive the key store",
	Long: `Write a timestamped tar.zst archive of the key directory (keys, config,
known hosts) into the backups directory. Earlier backups are never
overwritten or pruned.

Examples:
  gitkeys backup`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return backupCommand()
	},
}

// reportCmd writes and prints a key store report
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a key store report",
	Long: `Write a timestamped text report of the key store: per-key fingerprints,
the managed config contents, and the identities loaded in the agent.
The report is echoed and saved under the backups directory.

Examples:
  gitkeys report
  gitkeys report --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportCommand()
	},
}

// exportCmd writes public keys and config for manual transfer
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export public keys and config",
	Long: `Write a timestamped text file with the managed config and every public
key, for pasting into platform settings or carrying to another machine.
Private keys are never exported.

Examples:
  gitkeys export`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportCommand()
	},
}

// agentCmd groups the ssh-agent subcommands
var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage keys in the ssh-agent",
	Long: `Inspect and change which gitkeys identities the ssh-agent has loaded.

Examples:
  gitkeys agent list
  gitkeys agent add github_work
  gitkeys agent remove github_work`,
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List identities loaded in the agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		return agentListCommand()
	},
}

var agentAddCmd = &cobra.Command{
	Use:   "add <key-name>",
	Short: "Load a key into the agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return agentAddCommand(args[0])
	},
}

var agentRemoveCmd = &cobra.Command{
	Use:   "remove <key-name>",
	Short: "Unload a key from the agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return agentRemoveCommand(args[0])
	},
}

// menuCmd starts the interactive menu explicitly
var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Open the interactive menu",
	Long: `Open the numbered menu that wraps every gitkeys operation. This is the
same menu a bare 'gitkeys' opens on a terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return menuCommand()
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for gitkeys.

Examples:
  # Bash
  gitkeys completion bash > /etc/bash_completion.d/gitkeys

  # Zsh
  gitkeys completion zsh > "${fpath[1]}/_gitkeys"

  # Fish
  gitkeys completion fish > ~/.config/fish/completions/gitkeys.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrValidate,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	// create command flags
	createCmd.Flags().StringVar(&createPlatformFlag, "platform", "", "platform: github, gitlab, gitlab-selfhosted, bitbucket, custom")
	createCmd.Flags().StringVar(&createNameFlag, "name", "", "key identifier, e.g. work or personal")
	createCmd.Flags().StringVar(&createEmailFlag, "email", "", "email for the key comment")
	createCmd.Flags().StringVar(&createTypeFlag, "type", "", "key type: ed25519 (default) or rsa")
	createCmd.Flags().StringVar(&createHostFlag, "host", "", "hostname for self-hosted and custom platforms")
	createCmd.Flags().BoolVarP(&createForce, "force", "f", false, "replace an existing key with the same name")
	createCmd.Flags().BoolVar(&createNoAgent, "no-agent", false, "skip ssh-agent registration")
	createCmd.Flags().BoolVar(&createNoConfig, "no-config", false, "skip the SSH config alias")

	// list command flags
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output in JSON format")

	// test command flags
	testCmd.Flags().StringVar(&testNameFlag, "name", "", "test one key by name")
	testCmd.Flags().BoolVar(&testAll, "all", false, "test every key in the store")
	testCmd.Flags().StringVar(&testTimeoutFlag, "timeout", "", "probe timeout (e.g., 10s, 1m)")

	// remove command flags
	removeCmd.Flags().BoolVar(&removeKeepConfig, "keep-config", false, "leave config blocks in place")

	// report command flags
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "output in JSON format")

	// agent subcommands
	agentCmd.AddCommand(agentListCmd)
	agentCmd.AddCommand(agentAddCmd)
	agentCmd.AddCommand(agentRemoveCmd)

	// Register all commands
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(completionCmd)
}
