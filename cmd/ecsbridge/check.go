package main

import (
	"fmt"

	"github.com/ecsbridge/ecsbridge/internal/core/ecs"
	coresys "github.com/ecsbridge/ecsbridge/internal/core/system"
	"github.com/ecsbridge/ecsbridge/internal/data"
	"github.com/ecsbridge/ecsbridge/internal/scripting"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCheckCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the config, scene and scripts without running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			scene, err := data.LoadScene(cfg.Scene.Path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config ok (delta %s, store→world in %s)\n", cfg.Frame.Delta, cfg.Frame.StoreToWorld)
			fmt.Fprintf(out, "scene ok: %d objects\n", scene.Count())

			if !cfg.Scripting.Enabled {
				return nil
			}
			sched := coresys.NewScheduler(ecs.NewStore(), zap.NewNop())
			engine := scripting.NewEngine(sched, zap.NewNop())
			defer engine.Close()
			if err := engine.LoadDir(cfg.Scripting.Dir); err != nil {
				return err
			}
			fmt.Fprintf(out, "scripts ok: %d systems\n", engine.Systems())
			return nil
		},
	}
}
