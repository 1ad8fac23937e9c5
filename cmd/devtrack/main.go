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

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/francis-agencemxo/devtrack/internal/config"
	"github.com/francis-agencemxo/devtrack/internal/export"
	"github.com/francis-agencemxo/devtrack/internal/server"
	"github.com/francis-agencemxo/devtrack/internal/store"
	"github.com/francis-agencemxo/devtrack/internal/tui"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore reads the config file and opens the activity database.
// The caller must defer Close.
func openStore() (*store.Store, *config.Config, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return nil, nil, fmt.Errorf("resolving config path: %w", err)
	}
	cfg, err := config.ReadFromFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	st, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return st, cfg, nil
}

var rootCmd = &cobra.Command{
	Use:   "devtrack",
	Short: "Developer time tracking: activity store, aggregation service and dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func runTUI() error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	app := tui.NewApp(st)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local activity API",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		logger, logFile, err := server.NewLogger(cfg.LogDir)
		if err != nil {
			return err
		}
		defer logFile.Close()

		srv := &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: server.New(st, logger).Handler(),
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", cfg.ListenAddr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving: %w", err)
			}
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [csv|json] <path>",
	Short: "Export all activity records",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.ListRecords(store.RecordFilter{})
		if err != nil {
			return fmt.Errorf("listing records: %w", err)
		}
		names, err := st.CustomNames()
		if err != nil {
			return fmt.Errorf("listing custom names: %w", err)
		}

		switch args[0] {
		case "csv":
			err = export.ToCSV(records, names, args[1])
		case "json":
			err = export.ToJSON(records, names, args[1])
		default:
			return fmt.Errorf("unknown format %q (want csv or json)", args[0])
		}
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d records to %s\n", len(records), args[1])
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.DefaultPath()
		if err != nil {
			return err
		}
		cfg, err := config.Default()
		if err != nil {
			return err
		}
		if err := config.Init(path, cfg); err != nil {
			return err
		}
		fmt.Printf("Configuration initialized at %s\n", path)
		fmt.Printf("Listen Addr: %s\n", cfg.ListenAddr)
		fmt.Printf("Database:    %s\n", cfg.DBPath)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.DefaultPath()
		if err != nil {
			return err
		}
		cfg, err := config.ReadFromFile(path)
		if err != nil {
			return err
		}
		fmt.Printf("Config file: %s\n", path)
		fmt.Printf("Listen Addr: %s\n", cfg.ListenAddr)
		fmt.Printf("Database:    %s\n", cfg.DBPath)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configListCmd)
	rootCmd.AddCommand(tuiCmd, serveCmd, exportCmd, configCmd)
}
