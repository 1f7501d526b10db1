package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/busfahrer-client/internal/api"
	"github.com/DoyleJ11/busfahrer-client/internal/config"
	"github.com/DoyleJ11/busfahrer-client/internal/hub"
	"github.com/DoyleJ11/busfahrer-client/internal/journal"
	"github.com/DoyleJ11/busfahrer-client/internal/notify"
	"github.com/DoyleJ11/busfahrer-client/internal/screen"
	"github.com/DoyleJ11/busfahrer-client/internal/view"
	"github.com/DoyleJ11/busfahrer-client/internal/ws"
)

type staged interface{ Stage() view.Stage }

func newWatchCmd(cfg *config.Config) *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "watch <route>",
		Short: "Mount a route and log its state, popups and navigations.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watch(cmd.Context(), cfg, args[0], duration)
		},
	}
	cmd.Flags().DurationVar(&duration, "for", 0, "stop after this long, 0 runs until interrupted")
	return cmd
}

func watch(ctx context.Context, cfg *config.Config, route string, duration time.Duration) (err error) {
	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	client, err := api.New(cfg.APIURL, api.WithLogger(log.Named("api")), api.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return err
	}
	client.SetSession(cfg.SessionCookie, cfg.SessionToken)

	deps := screen.Deps{
		API: client,
		WS: ws.NewManager(ws.Options{
			URL:            cfg.WSURL,
			HTTPClient:     client.HTTPClient(),
			ReconnectDelay: cfg.ReconnectDelay,
			DialTimeout:    cfg.DialTimeout,
			Logger:         log.Named("ws"),
		}),
		Log: log,
		Observe: func(name string, state any) {
			fields := []zap.Field{zap.String("screen", name), zap.Any("state", state)}
			if s, ok := state.(staged); ok {
				fields = append(fields, zap.Stringer("stage", s.Stage()))
			}
			log.Info("state", fields...)
		},
	}

	var opts []hub.Option
	if cfg.JournalDSN != "" {
		store, err := journal.Open(cfg.JournalDSN)
		if err != nil {
			return err
		}
		w := journal.NewWriter(store, journal.WithBuffer(cfg.JournalBuffer), journal.WithLogger(log.Named("journal")))
		deps.Journal = w
		// writer first so it flushes before the store closes
		opts = append(opts, hub.WithCloser(w), hub.WithCloser(store))
		log.Info("journal enabled", zap.String("session", w.Session()))
	}

	// the hub outlives ctx so the history can still be read and Shutdown
	// flushes the journal in order
	h := hub.NewHub(context.WithoutCancel(ctx), deps, notify.Logger{Log: log.Named("ui")}, opts...)
	defer func() { err = multierr.Append(err, h.Shutdown()) }()

	h.Open(route)
	<-ctx.Done()
	log.Info("stopping", zap.Strings("history", h.History()))
	return nil
}
