package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/gitkeys/internal/errors"
	"github.com/rileyhilliard/gitkeys/internal/platform"
	"github.com/rileyhilliard/gitkeys/internal/ui"
)

// RemoveOptions holds options for the remove command.
type RemoveOptions struct {
	Name        string // Key to remove; empty opens the picker on a terminal
	KeepConfig  bool   // Leave config blocks in place
	Interactive bool   // Confirm before deleting
}

func removeCommand(name string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	return Remove(app, RemoveOptions{
		Name:        name,
		KeepConfig:  removeKeepConfig,
		Interactive: ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stdout),
	})
}

// Remove deletes a key pair and unwinds its wiring: the agent identity
// first, then the config blocks pointing at it, the files last. Order
// matters; files go last so a failed step leaves a store that still lists
// the key.
func Remove(app *App, opts RemoveOptions) error {
	ctx := context.Background()

	name := opts.Name
	if name == "" {
		if !opts.Interactive {
			return errors.New(errors.ErrValidate,
				"Key name is required",
				"Usage: gitkeys remove <key-name>")
		}
		picked, err := pickStoredKey(ctx, app, "Which key should be removed?")
		if err != nil {
			return err
		}
		if picked == "" {
			fmt.Println("Cancelled.")
			return nil
		}
		name = picked
	}

	entry, err := app.Store.Find(ctx, name)
	if err != nil {
		return err
	}

	if opts.Interactive {
		var confirmed bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Delete key '%s'?", entry.Name)).
					Description("Removes the key pair, its agent identity, and its config blocks").
					Value(&confirmed),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input", "")
		}
		if !confirmed {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	// Agent identity; a dead agent has nothing to unload
	if err := app.Agent.Remove(ctx, entry.PrivatePath); err != nil {
		ui.PrintWarning("Could not unload from the agent: " + shortError(err))
	}

	// Config blocks
	if !opts.KeepConfig {
		aliases, err := app.Editor.RemoveByIdentity(entry.PrivatePath)
		if err != nil {
			ui.PrintWarning("Could not update the managed config: " + shortError(err))
		} else {
			for _, alias := range aliases {
				fmt.Printf("%s Removed alias '%s'\n", ui.SymbolSuccess, alias)
			}
		}
	}

	// Key files
	if err := app.Store.Delete(entry.Name); err != nil {
		return err
	}
	fmt.Printf("%s Removed key '%s'\n", ui.SymbolSuccess, entry.Name)
	return nil
}

// pickStoredKey opens the key picker over everything in the store. An
// empty name with a nil error means the user cancelled.
func pickStoredKey(ctx context.Context, app *App, title string) (string, error) {
	keys, err := app.Store.Scan(ctx)
	if err != nil {
		return "", err
	}

	blockByKey, _ := configIndex(app)
	infos := make([]ui.KeyInfo, 0, len(keys))
	for _, key := range keys {
		platformKey, _, _ := platform.SplitKeyName(key.Name)
		info := ui.KeyInfo{
			Name:      key.Name,
			Platform:  platformKey,
			Algorithm: key.Algorithm,
			Bits:      key.Bits,
		}
		if block, ok := blockByKey[key.Name]; ok {
			info.Alias = block.Alias
		}
		infos = append(infos, info)
	}

	picked, err := ui.PickKey(title, infos)
	if err != nil {
		return "", err
	}
	if picked == nil {
		return "", nil
	}
	return picked.Name, nil
}
