package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/purificadora/inventario/internal/db"
	"github.com/purificadora/inventario/internal/files"
	"github.com/purificadora/inventario/internal/storage"
)

func (a *app) runInit(cmd *cobra.Command, _ []string) error {
	database, st, err := a.openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := a.bootstrap(cmd.Context(), database, st); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Database ready: %s (%s)\n", a.cfg.DatabaseDSN, a.cfg.DBDriver)
	return nil
}

func (a *app) runPurge(cmd *cobra.Command, _ []string) error {
	database, st, err := a.openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.EnsureSchema(cmd.Context(), database); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}

	disk, err := storage.NewDisk(a.cfg.UploadDir)
	if err != nil {
		return err
	}

	res, err := files.NewRegistry(st, disk, a.log).PurgeOrphaned(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Orphaned files removed: %d\nPending blob removals retried: %d\n", res.Files, res.Retried)
	return nil
}
