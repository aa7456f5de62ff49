package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/purificadora/inventario/internal/config"
	"github.com/purificadora/inventario/internal/logging"
)

// app carries what every command needs once flags are parsed.
type app struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	closeLog func()
}

func newRootCmd() (*cobra.Command, *app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	a := &app{cfg: cfg}

	root := &cobra.Command{
		Use:   "purificadora",
		Short: "Inventory and file management server",
		Long: `purificadora serves the inventory, jug stock and file registry API
together with the web pages that use it.

Settings come from the environment (or a .env file) and can be overridden
with flags. Run without a command to start the server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			log, closeLog, err := logging.New(a.cfg.LogLevel, a.cfg.LogFile)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.log, a.closeLog = log, closeLog
			return nil
		},
		RunE: a.runServe,
	}
	cfg.BindFlags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			Args:  cobra.NoArgs,
			RunE:  a.runServe,
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create the schema, the master account and the initial jug stock",
			Args:  cobra.NoArgs,
			RunE:  a.runInit,
		},
		&cobra.Command{
			Use:   "purge-orphans",
			Short: "Delete files whose uploader no longer exists",
			Args:  cobra.NoArgs,
			RunE:  a.runPurge,
		},
	)

	return root, a, nil
}

func main() {
	root, a, err := newRootCmd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	err = root.Execute()
	if a.closeLog != nil {
		a.closeLog()
	}
	if err != nil {
		os.Exit(1)
	}
}
