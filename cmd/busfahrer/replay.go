package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/busfahrer-client/internal/config"
	"github.com/DoyleJ11/busfahrer-client/internal/journal"
	"github.com/DoyleJ11/busfahrer-client/internal/view"
	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

func newReplayCmd(cfg *config.Config) *cobra.Command {
	var screenID string

	cmd := &cobra.Command{
		Use:   "replay <session>",
		Short: "Rebuild screen states from a recorded push journal.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return replay(cmd.Context(), cfg, args[0], screenID)
		},
	}
	cmd.Flags().StringVar(&screenID, "screen-id", "", "only replay this screen instance")
	return cmd
}

func replay(ctx context.Context, cfg *config.Config, session, screenID string) (err error) {
	if cfg.JournalDSN == "" {
		return errors.New("replay needs --journal-dsn")
	}
	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if ctx == nil {
		ctx = context.Background()
	}
	store, err := journal.Open(cfg.JournalDSN)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, store.Close()) }()

	entries, err := store.Load(ctx, session, screenID)
	if err != nil {
		return err
	}

	// screens of one session may overlap, so group by instance first
	var order []string
	groups := make(map[string][]journal.Entry)
	for _, e := range entries {
		if _, ok := groups[e.ScreenID]; !ok {
			order = append(order, e.ScreenID)
		}
		groups[e.ScreenID] = append(groups[e.ScreenID], e)
	}

	for _, id := range order {
		es := groups[id]
		state, ok := fold(es[0].Screen, journal.Pushes(es))
		if !ok {
			log.Warn("unknown screen", zap.String("screen", es[0].Screen), zap.String("screenId", id))
			continue
		}
		log.Info("replayed",
			zap.String("screenId", id),
			zap.String("screen", es[0].Screen),
			zap.Int("messages", len(es)),
			zap.Any("state", state),
		)
	}
	return nil
}

func fold(screen string, msgs []types.PushMessage) (any, bool) {
	switch screen {
	case "home", "lobbies":
		return journal.Replay(view.LobbyList{}, view.LobbyList.Apply, msgs), true
	case "game":
		return journal.Replay(view.GameLobby{}, view.GameLobby.Apply, msgs), true
	case "phase1":
		return journal.Replay(view.Phase1{}, view.Phase1.Apply, msgs), true
	case "phase2":
		return journal.Replay(view.Phase2{}, view.Phase2.Apply, msgs), true
	case "phase3":
		return journal.Replay(view.Phase3{}, view.Phase3.Apply, msgs), true
	case "friends":
		return journal.Replay(view.Friends{}, view.Friends.Apply, msgs), true
	case "account":
		return journal.Replay(view.Account{}, view.Account.Apply, msgs), true
	}
	return nil, false
}
