package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/busfahrer-client/internal/config"
	"github.com/DoyleJ11/busfahrer-client/internal/fakeserver"
	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

func serve(ctx context.Context, cfg *Config) error {
	log, err := config.NewLogger(config.LogConfig{Level: cfg.logLevel, Format: cfg.logFormat})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := fakeserver.New(log)
	defer fs.Close()
	mountAdmin(fs, log)
	if cfg.fixtures {
		stubFixtures(fs)
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           fs,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Info("listening", zap.String("addr", srv.Addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	fs.DropConnections()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func stubFixtures(fs *fakeserver.Server) {
	fs.Stub(http.MethodGet, "get-account", http.StatusOK, types.Account{ID: "dev", Username: "dev", FriendCode: "DEV-0001"})
	fs.Stub(http.MethodGet, "get-click-sound", http.StatusOK, map[string]string{"clickSound": "default"})
	fs.Stub(http.MethodGet, "get-card-theme", http.StatusOK, map[string]string{"cardTheme": "classic"})
	fs.Stub(http.MethodGet, "get-waiting-games", http.StatusOK, map[string]any{
		"games": []types.GameSummary{{ID: "dev-game", Name: "Dev table", Players: 1, MaxPlayers: 8}},
	})
	fs.Stub(http.MethodPost, "create-game", http.StatusOK, map[string]string{"gameId": "dev-game"})
	fs.Stub(http.MethodPost, "join-game/dev-game", http.StatusOK, nil)
	fs.Stub(http.MethodGet, "get-player-id/dev-game", http.StatusOK, map[string]string{"playerId": "dev"})
	fs.Stub(http.MethodGet, "get-players/dev-game", http.StatusOK, map[string]any{
		"players": []types.Player{{ID: "dev", Name: "dev", IsGameMaster: true}},
	})
	fs.Stub(http.MethodGet, "is-game-master", http.StatusOK, map[string]bool{"isGameMaster": true})
}
