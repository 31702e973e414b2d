package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rileyhilliard/gitkeys/internal/doctor"
	"github.com/rileyhilliard/gitkeys/internal/ui"
)

func agentListCommand() error {
	app, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if err := doctor.RequireTools(app.Runner, app.Settings.OS, "ssh-add"); err != nil {
		return err
	}

	loaded, err := app.Agent.ListLoaded(ctx)
	if err != nil {
		return err
	}
	if len(loaded) == 0 {
		fmt.Println("No identities loaded in the agent.")
		fmt.Println("Load one with: gitkeys agent add <key-name>")
		return nil
	}

	columns := []ui.TableColumn{
		{Title: "FINGERPRINT", Width: 50},
		{Title: "TYPE", Width: 12},
		{Title: "COMMENT", Width: 24},
	}
	rows := make([][]string, 0, len(loaded))
	for _, key := range loaded {
		keyType := key.Algorithm
		if key.Bits > 0 {
			keyType += " " + strconv.Itoa(key.Bits)
		}
		rows = append(rows, []string{key.Fingerprint, keyType, key.Comment})
	}
	fmt.Println(ui.RenderSimpleTable(columns, rows))
	return nil
}

func agentAddCommand(name string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if err := doctor.RequireTools(app.Runner, app.Settings.OS, "ssh-add"); err != nil {
		return err
	}

	// The menu calls in with no name
	if name == "" {
		name, err = pickStoredKey(ctx, app, "Which key should be loaded?")
		if err != nil {
			return err
		}
		if name == "" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	entry, err := app.Store.Find(ctx, name)
	if err != nil {
		return err
	}
	if err := app.Agent.EnsureRunning(ctx); err != nil {
		return err
	}
	if err := app.Agent.Add(ctx, entry.PrivatePath); err != nil {
		return err
	}
	fmt.Printf("%s Loaded '%s' into the agent\n", ui.SymbolSuccess, entry.Name)
	return nil
}

func agentRemoveCommand(name string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if err := doctor.RequireTools(app.Runner, app.Settings.OS, "ssh-add"); err != nil {
		return err
	}

	entry, err := app.Store.Find(ctx, name)
	if err != nil {
		return err
	}
	if err := app.Agent.Remove(ctx, entry.PrivatePath); err != nil {
		return err
	}
	fmt.Printf("%s Unloaded '%s' from the agent\n", ui.SymbolSuccess, entry.Name)
	return nil
}
