// Package guard holds the one-shot access checks a screen runs before it
// starts anything that depends on the server.
package guard

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/DoyleJ11/busfahrer-client/internal/api"
	"github.com/DoyleJ11/busfahrer-client/internal/notify"
)

var ErrDenied = errors.New("guard: access denied")

// Probe asks the server whether the screen may be shown. gameID is empty for
// screens outside a game.
type Probe func(ctx context.Context, c *api.Client, gameID string) (bool, error)

type Check struct {
	Name     string
	Probe    Probe
	Fallback string
}

// Auth passes when the session resolves to an account.
var Auth = Check{
	Name:     "auth",
	Fallback: "/login",
	Probe: func(ctx context.Context, c *api.Client, _ string) (bool, error) {
		acc, err := c.GetAccount(ctx)
		if err != nil {
			return false, err
		}
		return acc.ID != "" || acc.Username != "", nil
	},
}

// Game passes when the server knows the local player in that game.
var Game = Check{
	Name:     "game",
	Fallback: "/",
	Probe: func(ctx context.Context, c *api.Client, gameID string) (bool, error) {
		if gameID == "" {
			return false, nil
		}
		id, err := c.GetPlayerID(ctx, gameID)
		if err != nil {
			return false, err
		}
		return id != "", nil
	},
}

// Lobby passes when the waiting-games listing is readable.
var Lobby = Check{
	Name:     "lobby",
	Fallback: "/login",
	Probe: func(ctx context.Context, c *api.Client, _ string) (bool, error) {
		_, err := c.GetWaitingGames(ctx)
		return err == nil, err
	},
}

// Gate runs a Check at most once. Until it resolved the screen does nothing
// server dependent; a negative result redirects exactly once.
type Gate struct {
	check Check
	log   *zap.Logger

	once       sync.Once
	mu         sync.Mutex
	resolved   bool
	authorized bool
}

func NewGate(check Check, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{check: check, log: log}
}

func (g *Gate) Name() string { return g.check.Name }

// Run probes the server and returns whether the screen may proceed. Later
// calls return the first answer without probing again.
func (g *Gate) Run(ctx context.Context, c *api.Client, gameID string, sig notify.Signaler) bool {
	g.once.Do(func() {
		ok, err := g.check.Probe(ctx, c, gameID)
		if err != nil {
			g.log.Info("guard probe failed",
				zap.String("guard", g.check.Name),
				zap.String("gameId", gameID),
				zap.Error(err),
			)
			ok = false
		}

		g.mu.Lock()
		g.resolved, g.authorized = true, ok
		g.mu.Unlock()

		if !ok && ctx.Err() == nil {
			sig.Navigate(notify.Route{Path: g.check.Fallback, Replace: true})
		}
	})
	return g.Authorized()
}

func (g *Gate) Resolved() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resolved
}

func (g *Gate) Authorized() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authorized
}
