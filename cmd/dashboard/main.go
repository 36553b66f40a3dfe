package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"supplier-dashboard/internal/cli"
	"supplier-dashboard/internal/dashboard"
)

var (
	store   *cli.StoreFlags
	addr    string
	company string
	cities  []string
)

var rootCmd = &cobra.Command{
	Use:          "dashboard",
	Short:        "Serve the supplier performance dashboard",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         serve,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the dashboard views as text tables",
	Args:  cobra.NoArgs,
	RunE:  report,
}

func init() {
	store = cli.NewStoreFlags(rootCmd.PersistentFlags())
	rootCmd.Flags().StringVar(&addr, "addr", envOr("DASHBOARD_ADDR", ":8501"), "HTTP listen address")

	reportCmd.Flags().StringVar(&company, "company", "", "supplier to show (default: first in table)")
	reportCmd.Flags().StringSliceVar(&cities, "city", nil, "cities to include (default: all)")
	rootCmd.AddCommand(reportCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	logger := cli.NewLogger()
	gin.SetMode(gin.ReleaseMode)

	metrics := dashboard.NewMetrics()
	svc := dashboard.NewService(store.Config(), metrics)
	srv := &http.Server{
		Addr:              addr,
		Handler:           dashboard.NewRouter(svc, metrics, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening", "addr", addr, "driver", store.Config().Driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func report(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	svc := dashboard.NewService(store.Config(), dashboard.NewMetrics())

	ov, err := svc.Overview(ctx, dashboard.Selection{Company: company, Cities: cities})
	if err != nil {
		return err
	}
	fv, err := svc.Forecast(ctx)
	if err != nil {
		return err
	}
	cv, err := svc.Clusters(ctx)
	if err != nil {
		return err
	}
	return dashboard.WriteReport(cmd.OutOrStdout(), ov, fv, cv)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
