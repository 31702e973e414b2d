package cli

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/gitkeys/internal/backup"
	"github.com/rileyhilliard/gitkeys/internal/ui"
)

func exportCommand() error {
	app, err := newApp()
	if err != nil {
		return err
	}

	reporter := backup.NewReporter(app.Store, app.Keygen, app.Agent,
		app.Settings.ConfigFile(), app.Settings.BackupDir())

	path, content, err := reporter.Export(context.Background())
	if err != nil {
		return err
	}

	fmt.Println(content)
	fmt.Printf("%s Export saved to %s\n", ui.SymbolSuccess, path)
	fmt.Println()
	fmt.Println("Only public keys and config were exported; private keys stay put.")
	return nil
}
