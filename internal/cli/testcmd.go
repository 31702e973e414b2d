package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rileyhilliard/gitkeys/internal/doctor"
	"github.com/rileyhilliard/gitkeys/internal/errors"
	"github.com/rileyhilliard/gitkeys/internal/keystore"
	"github.com/rileyhilliard/gitkeys/internal/platform"
	"github.com/rileyhilliard/gitkeys/internal/probe"
	"github.com/rileyhilliard/gitkeys/internal/sshcfg"
	"github.com/rileyhilliard/gitkeys/internal/ui"
)

// TestOptions holds options for the test command.
type TestOptions struct {
	Target  string        // Positional argument: a platform name or config alias
	Name    string        // Test one key by name
	All     bool          // Test every key in the store
	Timeout time.Duration // Per-probe timeout; zero uses the configured default
}

// probeJob pairs a probe target with the label shown in the results table.
// Labels stay distinct even when several keys share one destination.
type probeJob struct {
	Label  string
	Target probe.Target
}

func testCommand(target string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	timeout, err := parseTimeout(testTimeoutFlag)
	if err != nil {
		return err
	}
	return Test(app, TestOptions{
		Target:  target,
		Name:    testNameFlag,
		All:     testAll,
		Timeout: timeout,
	})
}

// Test probes platform SSH endpoints to verify keys authenticate. Probes
// run against the key's wired hostname with the identity pinned, so a
// missing Include line in the user's main config never skews the result.
// Returns a CONNECT error when nothing authenticated; individual failures
// are reported, not fatal.
func Test(app *App, opts TestOptions) error {
	ctx := context.Background()

	if err := doctor.RequireTools(app.Runner, app.Settings.OS, "ssh"); err != nil {
		return err
	}

	jobs, err := resolveTestTargets(ctx, app, opts)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return nil
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = app.Settings.ProbeTimeout
	}
	tester := probe.NewTester(app.Runner, timeout, app.Settings.KnownHostsFile())

	fmt.Printf("Testing %d connection%s\n\n", len(jobs), pluralSuffix(len(jobs)))

	targets := make([]probe.Target, len(jobs))
	for i, job := range jobs {
		targets[i] = job.Target
	}
	results, anyOK, err := tester.TestAll(ctx, targets)
	if err != nil {
		return err
	}

	rows := make([]ui.ProbeTableRow, 0, len(results))
	for i, r := range results {
		detail := "authenticated"
		if !r.Success {
			detail = r.Reason.String()
		}
		rows = append(rows, ui.ProbeTableRow{
			Alias:   jobs[i].Label,
			Success: r.Success,
			Detail:  detail,
			Elapsed: r.Duration,
		})
	}
	fmt.Println(ui.RenderProbeTable(rows))

	for i, r := range results {
		if !r.Success && r.Hint != "" {
			fmt.Println(ui.MutedStyle().Render("  " + jobs[i].Label + ": " + r.Hint))
		}
	}

	if !anyOK {
		return errors.New(errors.ErrConnect,
			"No connection test succeeded",
			"Check that the public keys are registered on the platforms: gitkeys list")
	}
	return nil
}

// resolveTestTargets turns the command's selector into concrete probes.
// Keys resolve to hostname+identity targets through their config block (or
// the platform's default hostname); an alias that is not in the managed
// config passes through for the ssh client to resolve itself. An empty
// slice with a nil error means the user cancelled the picker.
func resolveTestTargets(ctx context.Context, app *App, opts TestOptions) ([]probeJob, error) {
	blockByKey, blockByAlias := configIndex(app)

	// One key by name
	if opts.Name != "" {
		entry, err := app.Store.Find(ctx, opts.Name)
		if err != nil {
			return nil, err
		}
		job, err := jobForKey(*entry, blockByKey)
		if err != nil {
			return nil, err
		}
		return []probeJob{job}, nil
	}

	// Everything in the store
	if opts.All {
		keys, err := app.Store.Scan(ctx)
		if err != nil {
			return nil, err
		}
		if len(keys) == 0 {
			return nil, errors.New(errors.ErrConfig,
				"No keys to test",
				"Run 'gitkeys create' to generate one first")
		}
		return jobsForKeys(keys, blockByKey)
	}

	if opts.Target != "" {
		// A platform name covers all of its keys
		if prof, err := platform.Lookup(opts.Target); err == nil {
			keys, err := app.Store.ForPlatform(ctx, prof.Key)
			if err != nil {
				return nil, err
			}
			if len(keys) == 0 {
				return nil, errors.New(errors.ErrConfig,
					fmt.Sprintf("No keys found for platform '%s'", prof.Key),
					fmt.Sprintf("Create one first: gitkeys create --platform %s --name <label>", prof.Key))
			}
			return jobsForKeys(keys, blockByKey)
		}

		// A managed alias probes its own hostname and key
		if block, ok := blockByAlias[opts.Target]; ok {
			return []probeJob{{
				Label:  block.Alias,
				Target: probe.Target{Hostname: block.Hostname, KeyPath: block.IdentityFile},
			}}, nil
		}

		// Unknown alias: let the ssh client resolve it
		return []probeJob{{
			Label:  opts.Target,
			Target: probe.Target{Alias: opts.Target},
		}}, nil
	}

	// No selector: pick interactively on a terminal, test everything
	// otherwise
	keys, err := app.Store.Scan(ctx)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, errors.New(errors.ErrConfig,
			"No keys to test",
			"Run 'gitkeys create' to generate one first")
	}

	if ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stdout) {
		name, err := pickStoredKey(ctx, app, "Which key should be tested?")
		if err != nil {
			return nil, err
		}
		if name == "" {
			fmt.Println("Cancelled.")
			return nil, nil
		}
		for _, key := range keys {
			if key.Name == name {
				job, err := jobForKey(key, blockByKey)
				if err != nil {
					return nil, err
				}
				return []probeJob{job}, nil
			}
		}
	}

	return jobsForKeys(keys, blockByKey)
}

// configIndex loads the managed config once, indexed by key file name and
// by alias. Unreadable config degrades to empty maps; keys with platform
// default hostnames still resolve without it.
func configIndex(app *App) (map[string]sshcfg.Block, map[string]sshcfg.Block) {
	byKey := make(map[string]sshcfg.Block)
	byAlias := make(map[string]sshcfg.Block)
	blocks, err := app.Editor.List()
	if err != nil {
		ui.PrintWarning("Could not read the managed config: " + shortError(err))
		return byKey, byAlias
	}
	for _, b := range blocks {
		byKey[filepath.Base(b.IdentityFile)] = b
		byAlias[b.Alias] = b
	}
	return byKey, byAlias
}

// jobForKey resolves one key to a probe: the wired config block first, the
// platform's default hostname as fallback.
func jobForKey(key keystore.Entry, blockByKey map[string]sshcfg.Block) (probeJob, error) {
	if block, ok := blockByKey[key.Name]; ok {
		return probeJob{
			Label:  block.Alias,
			Target: probe.Target{Hostname: block.Hostname, KeyPath: key.PrivatePath},
		}, nil
	}
	if platformKey, _, ok := platform.SplitKeyName(key.Name); ok {
		if prof, err := platform.Lookup(platformKey); err == nil && prof.DefaultHostname != "" {
			return probeJob{
				Label:  key.Name,
				Target: probe.Target{Hostname: prof.DefaultHostname, KeyPath: key.PrivatePath},
			}, nil
		}
	}
	return probeJob{}, errors.New(errors.ErrConfig,
		fmt.Sprintf("No hostname known for key '%s'", key.Name),
		"The key has no config alias and no platform default; re-create it or add a Host block")
}

// jobsForKeys resolves each key, skipping the unresolvable with a warning
// so one orphaned key never blocks the rest. Errors when nothing resolved.
func jobsForKeys(keys []keystore.Entry, blockByKey map[string]sshcfg.Block) ([]probeJob, error) {
	jobs := make([]probeJob, 0, len(keys))
	for _, key := range keys {
		job, err := jobForKey(key, blockByKey)
		if err != nil {
			ui.PrintWarning("Skipping " + key.Name + ": " + shortError(err))
			continue
		}
		jobs = append(jobs, job)
	}
	if len(jobs) == 0 {
		return nil, errors.New(errors.ErrConfig,
			"No testable keys",
			"None of the stored keys resolves to a hostname; re-create them or add Host blocks")
	}
	return jobs, nil
}

func pluralSuffix(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
