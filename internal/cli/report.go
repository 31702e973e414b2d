package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rileyhilliard/gitkeys/internal/backup"
	"github.com/rileyhilliard/gitkeys/internal/ui"
)

func reportCommand() error {
	app, err := newApp()
	if err != nil {
		if reportJSON {
			return WriteJSONFromError(os.Stdout, err)
		}
		return err
	}

	reporter := backup.NewReporter(app.Store, app.Keygen, app.Agent,
		app.Settings.ConfigFile(), app.Settings.BackupDir())

	path, content, err := reporter.Report(context.Background())
	if err != nil {
		if reportJSON {
			return WriteJSONFromError(os.Stdout, err)
		}
		return err
	}

	if reportJSON {
		return WriteJSONSuccess(os.Stdout, map[string]interface{}{
			"path":    path,
			"content": content,
		})
	}

	fmt.Println(content)
	fmt.Printf("%s Report saved to %s\n", ui.SymbolSuccess, path)
	return nil
}
