package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/gitkeys/internal/doctor"
	"github.com/rileyhilliard/gitkeys/internal/errors"
	"github.com/rileyhilliard/gitkeys/internal/keygen"
	"github.com/rileyhilliard/gitkeys/internal/platform"
	"github.com/rileyhilliard/gitkeys/internal/probe"
	"github.com/rileyhilliard/gitkeys/internal/sshcfg"
	"github.com/rileyhilliard/gitkeys/internal/ui"
)

// CreateOptions holds options for the create command.
type CreateOptions struct {
	Platform    string // Platform key: github, gitlab, gitlab-selfhosted, bitbucket, custom
	Identifier  string // Key identifier, e.g. "work"
	Email       string // Optional key comment email
	KeyType     string // ed25519 or rsa; empty uses the configured default
	Host        string // Hostname for self-hosted and custom platforms
	Force       bool   // Replace an existing key pair
	SkipAgent   bool   // Skip ssh-agent registration
	SkipConfig  bool   // Skip the SSH config alias
	Interactive bool   // Prompt for missing values and confirmations
}

func createCommand() error {
	app, err := newApp()
	if err != nil {
		return err
	}
	return Create(app, CreateOptions{
		Platform:    createPlatformFlag,
		Identifier:  createNameFlag,
		Email:       createEmailFlag,
		KeyType:     createTypeFlag,
		Host:        createHostFlag,
		Force:       createForce,
		SkipAgent:   createNoAgent,
		SkipConfig:  createNoConfig,
		Interactive: ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stdout),
	})
}

// Create generates a key pair for a platform and wires it up: agent
// registration, a config alias, and the matching platform instructions.
// This is the main guided flow; every step past generation degrades to a
// warning so a flaky agent or config never strands a freshly minted key.
func Create(app *App, opts CreateOptions) error {
	ctx := context.Background()

	if err := doctor.RequireTools(app.Runner, app.Settings.OS, "ssh-keygen"); err != nil {
		return err
	}

	if err := fillCreateOptions(&opts); err != nil {
		return err
	}

	prof, err := platform.Lookup(opts.Platform)
	if err != nil {
		return err
	}
	if err := keygen.ValidateIdentifier(opts.Identifier); err != nil {
		return err
	}
	if err := keygen.ValidateEmail(opts.Email); err != nil {
		return err
	}

	hostname, err := prof.Hostname(opts.Host)
	if err != nil {
		return err
	}

	if opts.KeyType == "" {
		opts.KeyType = app.Settings.DefaultKeyType
	}

	keyName := prof.KeyName(opts.Identifier)
	alias := prof.Alias(hostname, opts.Identifier)

	if err := app.Settings.EnsureLayout(); err != nil {
		return err
	}

	// Step 1: Generate the key pair
	if app.Store.Exists(keyName) && !opts.Force {
		if !opts.Interactive {
			return errors.New(errors.ErrExists,
				fmt.Sprintf("Key '%s' already exists", keyName),
				"Pick a different --name or pass --force to replace it")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Key '%s' already exists. Replace it?", keyName)).
					Description("The existing key pair will be deleted").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Pass --force to replace without asking")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
		opts.Force = true
	}

	fmt.Printf("Creating SSH key for %s\n\n", opts.Platform)

	spinner := ui.NewSpinner("Generating " + keyName)
	spinner.Start()

	pair, err := app.Keygen.Generate(ctx, keygen.Request{
		Dir:     app.Store.Dir(),
		KeyName: keyName,
		Type:    opts.KeyType,
		Comment: opts.Email,
		Force:   opts.Force,
	})
	if err != nil {
		spinner.Fail()
		return err
	}
	spinner.Success()
	fmt.Printf("%s Key pair written to %s\n", ui.SymbolSuccess, pair.PrivatePath)

	// Step 2: Register with the ssh-agent
	if !opts.SkipAgent {
		fmt.Println()
		spinner = ui.NewSpinner("Adding key to ssh-agent")
		spinner.Start()

		agentErr := app.Agent.EnsureRunning(ctx)
		if agentErr == nil {
			agentErr = app.Agent.Add(ctx, pair.PrivatePath)
		}
		if agentErr != nil {
			spinner.Fail()
			ui.PrintWarning("Agent registration failed: " + shortError(agentErr))
			ui.PrintWarning("Load it later with: gitkeys agent add " + keyName)
		} else {
			spinner.Success()
		}
	}

	// Step 3: Write the config alias
	if !opts.SkipConfig {
		block := sshcfg.Block{
			Alias:        alias,
			Hostname:     hostname,
			IdentityFile: pair.PrivatePath,
		}

		var confirm func(string) (bool, error)
		if opts.Interactive {
			confirm = confirmReplace
		}

		action, err := app.Editor.Upsert(block, confirm)
		if err != nil {
			ui.PrintWarning("Config update failed: " + shortError(err))
		} else {
			switch action {
			case sshcfg.Added:
				fmt.Printf("%s Added alias '%s' to %s\n", ui.SymbolSuccess, alias, app.Editor.Path())
			case sshcfg.Replaced:
				fmt.Printf("%s Replaced alias '%s' in %s\n", ui.SymbolSuccess, alias, app.Editor.Path())
			case sshcfg.Skipped:
				fmt.Printf("%s Kept the existing '%s' block\n", ui.SymbolSkipped, alias)
			}
		}
	}

	// Step 4: Platform instructions
	pubKey, err := keygen.ReadPublicKey(pair.PublicPath)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Add this public key to your " + opts.Platform + " account:")
	fmt.Println()
	fmt.Println("  " + strings.TrimSpace(pubKey))
	fmt.Println()
	fmt.Printf("  %s\n", prof.KeysURL(hostname))
	fmt.Println()
	fmt.Println("Next steps:")
	if !opts.SkipConfig {
		fmt.Printf("  git clone git@%s:<owner>/<repo>.git\n", alias)
	}
	fmt.Printf("  gitkeys test %s\n", opts.Platform)
	printIncludeHint(app)

	// Step 5: Optional connection test
	if opts.Interactive {
		var runTest bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Test the connection now?").
					Description("Requires the public key to be registered on " + opts.Platform).
					Value(&runTest),
			),
		)
		if err := form.Run(); err != nil || !runTest {
			return nil
		}

		fmt.Println()
		spinner = ui.NewSpinner("Testing authentication against " + hostname)
		spinner.Start()

		tester := probe.NewTester(app.Runner, app.Settings.ProbeTimeout, app.Settings.KnownHostsFile())
		result, probeErr := tester.Test(ctx, probe.Target{
			Hostname: hostname,
			KeyPath:  pair.PrivatePath,
		})
		if probeErr != nil || !result.Success {
			spinner.Fail()
			if probeErr != nil {
				ui.PrintWarning("Probe could not run: " + shortError(probeErr))
			} else {
				ui.PrintWarning(result.Reason.String() + ": " + result.Hint)
			}
			return nil
		}
		spinner.Success()
		fmt.Printf("%s Authenticated against %s\n", ui.SymbolSuccess, hostname)
	}

	return nil
}

// fillCreateOptions prompts for anything required that the flags left
// empty. In non-interactive runs missing values fail validation instead.
func fillCreateOptions(opts *CreateOptions) error {
	if !opts.Interactive {
		if opts.Platform == "" {
			return errors.New(errors.ErrValidate,
				"Platform is required",
				"Pass --platform with one of: "+strings.Join(platform.Names(), ", "))
		}
		if opts.Identifier == "" {
			return errors.New(errors.ErrValidate,
				"Key identifier is required",
				"Pass --name with a short label like 'work' or 'personal'")
		}
		return nil
	}

	var groups []*huh.Group

	if opts.Platform == "" {
		var options []huh.Option[string]
		for _, name := range platform.Names() {
			options = append(options, huh.NewOption(name, name))
		}
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().
				Title("Platform").
				Options(options...).
				Value(&opts.Platform),
		))
	}

	if opts.Identifier == "" {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Key identifier").
				Description("A short label for this identity").
				Placeholder("work").
				Value(&opts.Identifier).
				Validate(func(s string) error {
					if err := keygen.ValidateIdentifier(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("letters, digits, hyphens, and underscores only")
					}
					return nil
				}),
		))
	}

	if opts.Email == "" {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Email (optional)").
				Description("Used as the key comment").
				Placeholder("you@example.com (leave empty to skip)").
				Value(&opts.Email),
		))
	}

	if len(groups) > 0 {
		if err := huh.NewForm(groups...).Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Pass --platform and --name to skip the prompts")
		}
	}

	opts.Platform = strings.TrimSpace(opts.Platform)
	opts.Identifier = strings.TrimSpace(opts.Identifier)
	opts.Email = strings.TrimSpace(opts.Email)

	// Self-hosted platforms still need a hostname
	if opts.Host == "" {
		prof, err := platform.Lookup(opts.Platform)
		if err != nil {
			return err
		}
		if prof.NeedsHostname {
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Hostname").
						Description("The SSH endpoint of your " + opts.Platform + " instance").
						Placeholder("git.example.com").
						Value(&opts.Host).
						Validate(func(s string) error {
							if strings.TrimSpace(s) == "" {
								return fmt.Errorf("hostname is required for %s", opts.Platform)
							}
							return nil
						}),
				),
			)
			if err := form.Run(); err != nil {
				return errors.WrapWithCode(err, errors.ErrConfig,
					"Failed to get user input",
					"Pass --host with the instance hostname")
			}
			opts.Host = strings.TrimSpace(opts.Host)
		}
	}

	return nil
}

// confirmReplace asks before overwriting an existing alias block.
func confirmReplace(alias string) (bool, error) {
	var replace bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Alias '%s' already exists. Replace it?", alias)).
				Value(&replace),
		),
	)
	if err := form.Run(); err != nil {
		return false, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input", "")
	}
	return replace, nil
}

// printIncludeHint reminds the user to pull the managed config into their
// main SSH config. Printed only while the Include line is missing; ssh
// resolves relative Include paths against ~/.ssh for user configs, so the
// default key dir gets the short form.
func printIncludeHint(app *App) {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	sshDir := filepath.Join(home, ".ssh")

	include := app.Settings.ConfigFile()
	if rel, err := filepath.Rel(sshDir, include); err == nil && !strings.HasPrefix(rel, "..") {
		include = rel
	}

	data, err := os.ReadFile(filepath.Join(sshDir, "config"))
	if err == nil && strings.Contains(string(data), "Include "+include) {
		return
	}
	fmt.Println()
	fmt.Println("To use aliases with plain ssh and git, add this line to ~/.ssh/config:")
	fmt.Println("  Include " + include)
}
