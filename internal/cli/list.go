package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/gitkeys/internal/keygen"
	"github.com/rileyhilliard/gitkeys/internal/platform"
	"github.com/rileyhilliard/gitkeys/internal/sshcfg"
	"github.com/rileyhilliard/gitkeys/internal/ui"
)

// ListEntry is one key in list output. The JSON shape is part of the
// scripting surface; field renames break callers.
type ListEntry struct {
	Name        string `json:"name"`
	Platform    string `json:"platform"`
	Algorithm   string `json:"algorithm"`
	Bits        int    `json:"bits,omitempty"`
	PrivatePath string `json:"private_path"`
	PublicPath  string `json:"public_path"`
	Alias       string `json:"alias,omitempty"`
	Hostname    string `json:"hostname,omitempty"`
	AgentLoaded bool   `json:"agent_loaded"`
}

func listCommand() error {
	app, err := newApp()
	if err != nil {
		return err
	}

	entries, err := ListKeys(app)
	if err != nil {
		if listJSON {
			return WriteJSONFromError(os.Stdout, err)
		}
		return err
	}

	if listJSON {
		return WriteJSONSuccess(os.Stdout, map[string]interface{}{"keys": entries})
	}

	rows := make([]ui.KeyTableRow, 0, len(entries))
	for _, e := range entries {
		keyType := e.Algorithm
		if e.Bits > 0 {
			keyType = fmt.Sprintf("%s %d", e.Algorithm, e.Bits)
		}
		rows = append(rows, ui.KeyTableRow{
			Name:   e.Name,
			Type:   keyType,
			Alias:  e.Alias,
			Loaded: e.AgentLoaded,
		})
	}
	fmt.Println(ui.RenderKeyTable(rows))
	return nil
}

// ListKeys joins the key store with the managed config and the agent: every
// key pair on disk, annotated with its alias and whether the agent has it
// loaded. Config and agent trouble degrade to missing annotations so a
// broken agent never hides the keys themselves.
func ListKeys(app *App) ([]ListEntry, error) {
	ctx := context.Background()

	keys, err := app.Store.Scan(ctx)
	if err != nil {
		return nil, err
	}

	blockByKey := make(map[string]sshcfg.Block)
	blocks, err := app.Editor.List()
	if err != nil {
		ui.PrintWarning("Could not read the managed config: " + shortError(err))
	} else {
		for _, b := range blocks {
			blockByKey[filepath.Base(b.IdentityFile)] = b
		}
	}

	loaded := make(map[string]bool)
	if len(keys) > 0 {
		if loadedKeys, err := app.Agent.ListLoaded(ctx); err == nil {
			for _, lk := range loadedKeys {
				loaded[lk.Fingerprint] = true
			}
		}
	}

	entries := make([]ListEntry, 0, len(keys))
	for _, key := range keys {
		platformKey, _, ok := platform.SplitKeyName(key.Name)
		if !ok {
			platformKey = "custom"
		}
		entry := ListEntry{
			Name:        key.Name,
			Platform:    platformKey,
			Algorithm:   key.Algorithm,
			Bits:        key.Bits,
			PrivatePath: key.PrivatePath,
			PublicPath:  key.PublicPath,
		}
		if block, ok := blockByKey[key.Name]; ok {
			entry.Alias = block.Alias
			entry.Hostname = block.Hostname
		}
		if _, fingerprint, _, err := keygen.ParsePublicKey(key.PublicPath); err == nil {
			entry.AgentLoaded = loaded[fingerprint]
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
