package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ecsbridge/ecsbridge/internal/persist"
	"github.com/spf13/cobra"
)

func newSnapshotsCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots",
		Short: "Print the last saved transform of every entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			db, err := persist.Open(ctx, cfg.Database, log)
			if err != nil {
				return err
			}
			defer db.Close()

			rows, err := persist.NewSnapshotRepo(db).LatestSnapshot(ctx)
			if err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), rows)
			return nil
		},
	}
}

func printSnapshot(w io.Writer, rows []persist.SnapshotRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "no snapshots")
		return
	}
	for _, r := range rows {
		loc := r.Transform.Location
		fmt.Fprintf(w, "%-10d %-16s (%.3f, %.3f, %.3f)\n", r.EntityID, r.Name, loc.X, loc.Y, loc.Z)
	}
}
