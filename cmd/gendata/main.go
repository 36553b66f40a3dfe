package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"supplier-dashboard/internal/cli"
	"supplier-dashboard/internal/data"
	"supplier-dashboard/internal/db"
)

var (
	store      *cli.StoreFlags
	genCfg     = data.DefaultGenerateConfig()
	skipChecks bool
)

var rootCmd = &cobra.Command{
	Use:          "gendata",
	Short:        "Fill the supplier store with synthetic suppliers, products and orders",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	store = cli.NewStoreFlags(rootCmd.Flags())
	rootCmd.Flags().IntVar(&genCfg.Suppliers, "suppliers", genCfg.Suppliers, "number of suppliers to insert")
	rootCmd.Flags().IntVar(&genCfg.Products, "products", genCfg.Products, "number of products to insert")
	rootCmd.Flags().IntVar(&genCfg.Orders, "orders", genCfg.Orders, "number of order lines to insert")
	rootCmd.Flags().IntVar(&genCfg.BatchSize, "batch", genCfg.BatchSize, "batch size for bulk inserts")
	rootCmd.Flags().Uint64Var(&genCfg.Seed, "seed", 0, "random seed (0 picks one)")
	rootCmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "skip the integrity checks after inserting")
}

func run(cmd *cobra.Command, args []string) error {
	logger := cli.NewLogger()
	ctx := context.Background()
	out := cmd.OutOrStdout()

	gdb, err := db.Open(store.Config())
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

	start := time.Now()
	res, err := data.Generate(ctx, gdb, genCfg)
	if res != nil {
		printInserted(out, res)
	}
	if err != nil {
		return fmt.Errorf("failed to generate data: %w", err)
	}
	logger.Info("dataset generated", "elapsed", time.Since(start))

	if counts, err := data.TableCounts(ctx, gdb); err != nil {
		logger.Warn("failed to collect table counts", "error", err)
	} else {
		for _, c := range counts {
			logger.Info("table size", "table", c.Table, "rows", c.Rows)
		}
	}

	if !skipChecks {
		if err := printChecks(out, data.RunChecks(ctx, gdb)); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "Database setup and data generation completed successfully!")
	return nil
}

func printInserted(w io.Writer, res *data.GenerateResult) {
	fmt.Fprintf(w, "Inserted %d suppliers.\n", res.Suppliers)
	fmt.Fprintf(w, "Inserted %d categories.\n", res.Categories)
	fmt.Fprintf(w, "Inserted %d products.\n", res.Products)
	fmt.Fprintf(w, "Inserted %d order details.\n", res.Orders)
}

func printChecks(w io.Writer, results []data.CheckResult) error {
	table := tablewriter.NewWriter(w)
	table.Header("Table", "Check", "Description", "Duration", "Violations", "Status")
	for _, res := range results {
		status := "OK"
		switch {
		case res.Err != nil:
			status = "ERR: " + res.Err.Error()
		case res.Violations > 0:
			status = "FAIL"
		}
		row := []string{res.Table, res.Name, res.Description, res.Duration.String(), strconv.FormatInt(res.Violations, 10), status}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
