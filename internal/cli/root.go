package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/gitkeys/internal/agent"
	"github.com/rileyhilliard/gitkeys/internal/config"
	"github.com/rileyhilliard/gitkeys/internal/keygen"
	"github.com/rileyhilliard/gitkeys/internal/keystore"
	"github.com/rileyhilliard/gitkeys/internal/run"
	"github.com/rileyhilliard/gitkeys/internal/sshcfg"
	"github.com/rileyhilliard/gitkeys/internal/ui"
)

// Persistent flags shared by every command
var (
	configFlag  string
	keyDirFlag  string
	debugFlag   bool
	noColorFlag bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gitkeys",
	Short: "Generate, organize, and test SSH keys for hosted Git platforms",
	Long: `gitkeys generates SSH key pairs for hosted Git platforms (GitHub, GitLab,
Bitbucket, and self-hosted servers), registers them with your ssh-agent,
and writes per-key host aliases into a managed SSH config file.

Keys live in one directory (default ~/.ssh/gitkeys), one pair per
platform + identifier, so work and personal identities never collide.
Generated keys have no passphrase so scripted Git workflows never prompt;
protect the key directory accordingly.

Run without arguments for the interactive menu, or use the subcommands
directly for scripting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugFlag {
			os.Setenv("GITKEYS_DEBUG", "1")
		}
		if noColorFlag || !ui.IsTerminal(os.Stdout) {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bare invocation: menu on a terminal, help everywhere else.
		if ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stdout) {
			return menuCommand()
		}
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to the settings file")
	rootCmd.PersistentFlags().StringVar(&keyDirFlag, "key-dir", "", "override the key directory")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
}

// Config returns the --config flag value.
func Config() string {
	return configFlag
}

// Execute runs the root command. Any failure prints and exits 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// App bundles the components commands wire together. One is built per
// command invocation from the loaded settings.
type App struct {
	Settings *config.Settings
	Runner   run.Runner
	Store    *keystore.Store
	Keygen   *keygen.Tool
	Editor   *sshcfg.Editor
	Agent    *agent.Bridge
}

// newApp loads settings and constructs the component graph.
func newApp() (*App, error) {
	settings, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return nil, err
	}
	if keyDirFlag != "" {
		settings.KeyDir = config.ExpandTilde(keyDirFlag)
	}

	// First run: write a commented settings file so users have something
	// to edit. Best-effort; a read-only home shouldn't block commands.
	if configFlag == "" {
		_ = config.WriteDefault(config.DefaultPath())
	}

	runner := run.New()
	tool := keygen.NewTool(runner)

	return &App{
		Settings: settings,
		Runner:   runner,
		Store:    keystore.NewStore(settings.KeyDir, tool),
		Keygen:   tool,
		Editor:   sshcfg.NewEditor(settings.ConfigFile(), settings.BackupDir()),
		Agent:    agent.NewBridge(runner, settings.UseKeychain),
	}, nil
}
