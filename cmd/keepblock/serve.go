package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/keepblock/keepblock/internal/server"
	"github.com/keepblock/keepblock/pkg/codewriter"
)

func serveCmd(global *globalOptions) *cobra.Command {
	var watching bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the merge service",
		Long: `Serve the regeneration boundary over HTTP.

Endpoints:
  POST /v1/merge    merge generated code into an artifact
  POST /v1/split    split an artifact into its two regions
  GET  /v1/events   WebSocket stream of regeneration events
  GET  /metrics     Prometheus metrics
  GET  /healthz     liveness probe

With --watch the configured forms are regenerated on change and every
result is pushed to /v1/events.

Examples:
  keepblock serve
  keepblock serve --addr :7457 --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, global, watching)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from keepblock.yaml)")
	cmd.Flags().BoolVarP(&watching, "watch", "w", false, "Regenerate forms on change")
	cmd.Flags().StringP("lang", "l", "", "Target language for --watch: python or ruby")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, global *globalOptions, watching bool) error {
	e, err := loadEnv(cmd, global)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Addr:    e.cfg.Server.Addr,
		Logger:  e.logger,
		Metrics: e.metrics,
	})

	if watching {
		g, err := newGenerator(e, false)
		if err != nil {
			return err
		}
		lang := g.emitter.Language().String()
		go func() {
			err := watchForms(ctx, g, func(res codewriter.Result) {
				srv.Hub().Publish(resultEvent(res, lang))
			})
			if err != nil {
				e.logger.Error("watch stopped", "error", err)
			}
		}()
	}

	success(e.out, "Listening on http://%s", e.cfg.Server.Addr)
	return srv.ListenAndServe(ctx)
}

// resultEvent converts a generation result into a hub event.
func resultEvent(res codewriter.Result, lang string) server.Event {
	ev := server.Event{
		Type:     server.EventRegenerated,
		Path:     res.Key,
		Language: lang,
		Status:   res.Status.String(),
		Time:     time.Now(),
	}
	if res.Err != nil {
		ev.Type = server.EventError
		ev.Status = ""
		ev.Error = res.Err.Error()
	}
	return ev
}
