package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/urfave/cli/v2"

	"github.com/colecta/colecta-cli/internal/backup"
	"github.com/colecta/colecta-cli/internal/store"
)

// NewExportCommand writes a full backup of the collection.
func NewExportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export the collection as a JSON backup",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "clipboard", Usage: "Copy the backup to the clipboard instead of a file"},
		},
		Action: func(c *cli.Context) error {
			env, err := newEnv()
			if err != nil {
				return err
			}
			env.Store.FetchCategories(c.Context)
			env.Store.FetchItems(c.Context)

			doc := backup.New(env.Store.Categories(), env.Store.Items())
			data, err := doc.Marshal()
			if err != nil {
				return fmt.Errorf("failed to encode backup: %w", err)
			}

			if c.Bool("clipboard") {
				if err := clipboard.WriteAll(string(data)); err != nil {
					return fmt.Errorf("failed to copy to clipboard: %w", err)
				}
				fmt.Println("✅ Backup copied to clipboard.")
				return nil
			}

			path := "colecta-backup.json"
			if c.NArg() > 0 {
				path = c.Args().First()
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("failed to write backup: %w", err)
			}

			fmt.Printf("✅ Backup written to %s (%d categories, %d items).\n",
				path, len(doc.Categories), len(doc.Items))
			return nil
		},
	}
}

// NewImportCommand restores a backup, replacing the local collection.
func NewImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import a JSON backup (replaces the local collection)",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip confirmation"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("backup file is required")
			}

			data, err := os.ReadFile(c.Args().First())
			if err != nil {
				return fmt.Errorf("failed to read backup: %w", err)
			}

			doc, err := backup.Parse(data)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return err
			}

			env, err := newEnv()
			if err != nil {
				return err
			}
			env.Store.FetchCategories(c.Context)
			env.Store.FetchItems(c.Context)

			message := fmt.Sprintf("Replace the current collection with %d categories and %d items?",
				len(doc.Categories), len(doc.Items))
			if !confirm(message, c.Bool("yes")) {
				return nil
			}

			if err := env.Store.ImportData(doc); err != nil {
				if errors.Is(err, store.ErrImportSignedIn) {
					fmt.Println("Import only works while signed out; run 'colecta logout' first.")
				} else {
					fmt.Printf("Error importing backup: %v\n", err)
				}
				return err
			}

			fmt.Println("✅ Backup imported.")
			return nil
		},
	}
}
