package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"supplier-dashboard/internal/cli"
	"supplier-dashboard/internal/data"
	"supplier-dashboard/internal/db"
)

var store *cli.StoreFlags

var rootCmd = &cobra.Command{
	Use:          "createdb",
	Short:        "Create the supplier tables if they do not exist",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	store = cli.NewStoreFlags(rootCmd.Flags())
}

func run(cmd *cobra.Command, args []string) error {
	logger := cli.NewLogger()
	cfg := store.Config()

	gdb, err := db.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()

	if err := data.EnsureSchema(gdb); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	logger.Debug("schema ensured", "driver", cfg.Driver, "path", cfg.Path)

	fmt.Fprintln(cmd.OutOrStdout(), "Tables created successfully!")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
