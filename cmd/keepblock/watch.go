package main

import (
	"context"
	stderrors "errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/keepblock/keepblock/internal/watch"
	"github.com/keepblock/keepblock/pkg/codewriter"
)

func watchCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate forms whenever their definitions change",
		Long: `Generate every configured form once, then watch the form folders and
regenerate a form as soon as its definition is saved.

Examples:
  keepblock watch
  keepblock watch --interval 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, global)
		},
	}

	cmd.Flags().String("interval", "", "Polling interval (default from keepblock.yaml)")
	cmd.Flags().StringP("lang", "l", "", "Target language: python or ruby")
	cmd.Flags().Bool("create-dirs", false, "Create missing output folders")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, global *globalOptions) error {
	e, err := loadEnv(cmd, global)
	if err != nil {
		return err
	}
	g, err := newGenerator(e, false)
	if err != nil {
		return err
	}

	info(e.out, "Watching %v", e.cfg.FormDirs())
	return watchForms(ctx, g, func(res codewriter.Result) {
		if res.Err == nil {
			report(e, res)
		}
	})
}

// watchForms generates all configured forms, then regenerates changed
// ones until ctx is done. Every result is passed to notify.
func watchForms(ctx context.Context, g *generator, notify func(codewriter.Result)) error {
	cfg := g.env.cfg
	regenerate := func(paths []string) {
		results, _ := g.run(ctx, paths)
		for _, res := range results {
			notify(res)
		}
		g.env.flushMetrics()
	}

	if paths, err := cfg.FormPaths(); err != nil {
		return err
	} else if len(paths) > 0 {
		regenerate(paths)
	}

	w := watch.New(watch.Config{
		Paths:    cfg.FormDirs(),
		Match:    []string{"*.yaml", "*.yml"},
		Interval: cfg.Watch.IntervalDuration(),
		Logger:   g.env.logger,
	})
	w.OnChange(func(changes []watch.Change) {
		var paths []string
		for _, c := range changes {
			if c.Op != watch.Removed {
				paths = append(paths, c.Path)
			}
		}
		if len(paths) > 0 {
			regenerate(paths)
		}
	})

	if err := w.Run(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
