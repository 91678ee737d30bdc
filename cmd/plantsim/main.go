package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"plantsim/internal/config"
	"plantsim/internal/dashboard"
	"plantsim/internal/orchestrator"
	"plantsim/internal/progress"
)

var version = "dev"

var (
	configPath string
	duration   time.Duration
	logLevel   string
	quiet      bool

	dataDir string
	addr    string
)

var rootCmd = &cobra.Command{
	Use:   "plantsim",
	Short: "Synthetic sensor-data simulator for industrial equipment",
	Long: `plantsim generates synthetic time-series readings for instrumented
industrial equipment (conveyor belts, ball mills), appending one CSV file per
configured sensor, and can serve the generated data over a small HTTP API.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation defined by a YAML config",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(); err != nil {
			return err
		}
		if configPath == "" {
			return fmt.Errorf("--config is required")
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if duration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, duration)
			defer cancel()
		}

		o := orchestrator.New(cfg, logrus.StandardLogger())
		prog := progress.New(o.Rows(), o.ActiveSensors, quiet)
		prog.Printf("plantsim starting: %s, %d sensors enabled, output %s",
			cfg.AssetType, len(cfg.Enabled()), cfg.OutputDir)
		prog.Start()
		defer prog.Stop()

		return o.Run(ctx)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve generated sensor data over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(); err != nil {
			return err
		}

		srv := &http.Server{
			Addr:    addr,
			Handler: dashboard.NewServer(dataDir, logrus.StandardLogger()).Handler(),
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logrus.WithFields(logrus.Fields{"addr": addr, "data": dataDir}).Info("dashboard listening")
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <url> <jsonpath>",
	Short: "Fetch a dashboard endpoint and extract one value",
	Long: `Fetches a JSON endpoint and extracts a value using JSONPath syntax:

  plantsim query http://localhost:8080/api/sensors/IDL-01_data/summary '$.columns[0].mean'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		url, path := args[0], args[1]

		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Get(url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("GET %s: %s", url, resp.Status)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		value, err := dashboard.Query(body, path)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the plantsim version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func setupLogging() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q", logLevel)
	}
	logrus.SetLevel(level)
	return nil
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file (required)")
	runCmd.Flags().DurationVar(&duration, "duration", 0, "total run time (0 = run until interrupted)")
	runCmd.Flags().BoolVar(&quiet, "quiet", false, "suppress progress output")

	serveCmd.Flags().StringVar(&dataDir, "data-dir", "data", "directory of generated CSV files")
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "log level: debug, info, warn, error")
	rootCmd.AddCommand(runCmd, serveCmd, queryCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
