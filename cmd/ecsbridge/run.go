package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecsbridge/ecsbridge/internal/data"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runOptions struct {
	*rootOptions
	Frames  int
	Profile string
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{rootOptions: root, Frames: -1}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load the scene and run the frame loop",
		Long: `Load the configured scene into the host world, register every object
with the store and drive the three physics checkpoints at a fixed delta
until interrupted or until the frame limit is reached.

Example:
  ecsbridge run --config config/ecsbridge.toml
  ecsbridge run --frames 600 --profile cpu`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSim(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.Frames, "frames", -1, "stop after this many frames (overrides frame.frames, 0 runs forever)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "profile mode (cpu|mem), overrides profile.mode")
	return cmd
}

func runSim(ctx context.Context, opts *runOptions) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	if opts.Frames >= 0 {
		cfg.Frame.Frames = opts.Frames
	}
	if opts.Profile != "" {
		cfg.Profile.Mode = opts.Profile
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	switch cfg.Profile.Mode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.Profile.Path), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(cfg.Profile.Path), profile.NoShutdownHook).Stop()
	case "":
	default:
		return fmt.Errorf("unknown profile mode %q", cfg.Profile.Mode)
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	if cfg.Snapshot.Enabled {
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := a.attachSnapshots(dbCtx, cfg)
		cancel()
		if err != nil {
			return err
		}
	}
	if cfg.Scripting.Enabled {
		if err := a.attachScripts(cfg.Scripting.Dir); err != nil {
			return err
		}
	}

	scene, err := data.LoadScene(cfg.Scene.Path)
	if err != nil {
		return err
	}
	if err := a.spawnScene(scene); err != nil {
		return err
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	ticker := time.NewTicker(cfg.Frame.Delta)
	defer ticker.Stop()

	log.Info("frame loop started",
		zap.Duration("delta", cfg.Frame.Delta),
		zap.Int("frames", cfg.Frame.Frames),
		zap.Stringer("store_to_world", a.sched.SyncOutPhase()),
	)

	for {
		select {
		case <-ticker.C:
			a.tick(cfg.Frame.Delta)
			if cfg.Frame.Frames > 0 && a.sched.Frame() >= uint64(cfg.Frame.Frames) {
				log.Info("frame limit reached", zap.Uint64("frames", a.sched.Frame()))
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()), zap.Uint64("frames", a.sched.Frame()))
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}
