package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/andyslucky/gobang/internal/app"
	"github.com/andyslucky/gobang/internal/config"
	"github.com/andyslucky/gobang/internal/logging"

	// Register database adapters
	_ "github.com/andyslucky/gobang/internal/adapter/mysql"
	_ "github.com/andyslucky/gobang/internal/adapter/postgres"
	_ "github.com/andyslucky/gobang/internal/adapter/sqlite"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:   "gobang",
		Short: "A cross-platform terminal database client",
		Long: `gobang is a full-screen terminal client for MySQL, PostgreSQL and
SQLite: browse the schema, page through records, inspect table structure and
run ad-hoc SQL with schema-aware completion.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Init()
			defer logging.Sync()

			var cfg *config.Config
			var err error
			if configFlag != "" {
				cfg, err = config.Load(configFlag)
			} else {
				cfg = config.DefaultConfig()
			}
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			model := app.New(cfg)
			p := tea.NewProgram(model, tea.WithAltScreen())

			finalModel, err := p.Run()
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}

			// The pool is closed exactly once, on shutdown at the latest.
			if m, ok := finalModel.(app.Model); ok {
				m.Shared().Close()
			}
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Config file path")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gobang %s (commit: %s)\n", version, commit)
		},
	}
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
