package cli

import (
	"fmt"

	"github.com/rileyhilliard/gitkeys/internal/backup"
	"github.com/rileyhilliard/gitkeys/internal/ui"
)

func backupCommand() error {
	app, err := newApp()
	if err != nil {
		return err
	}

	spinner := ui.NewSpinner("Archiving " + app.Store.Dir())
	spinner.Start()

	archiver := backup.NewArchiver()
	path, err := archiver.Archive(app.Store.Dir(), app.Settings.BackupDir())
	if err != nil {
		spinner.Fail()
		return err
	}
	spinner.Success()

	fmt.Printf("%s Backup written to %s\n", ui.SymbolSuccess, path)
	fmt.Println()
	fmt.Println("The archive holds private keys. Keep it somewhere safe.")
	return nil
}
