package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/colecta/colecta-cli/internal/cli/commands"
	"github.com/colecta/colecta-cli/pkg/logging"
)

// Version will be set during build with ldflags
var Version = "0.1.0"

func main() {
	// User-facing output goes to stdout via the commands themselves; slog
	// carries diagnostics only, so default to warnings.
	logging.Setup(slog.LevelWarn)

	app := &cli.App{
		Name:    "colecta",
		Usage:   "Catalog your personal collection, locally or synced",
		Version: Version,
		Commands: []*cli.Command{
			// Collection
			commands.NewCategoryCommand(),
			commands.NewItemCommand(),

			// Views
			commands.NewStatsCommand(),
			commands.NewSearchCommand(),

			// Backup
			commands.NewExportCommand(),
			commands.NewImportCommand(),

			// Account
			commands.NewLoginCommand(),
			commands.NewLogoutCommand(),
			commands.NewWhoamiCommand(),

			// Meta
			commands.NewConfigCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
