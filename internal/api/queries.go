package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

func get(path string, gameID string) Request {
	r := Request{Method: http.MethodGet, Path: path}
	if gameID != "" {
		r.Query = url.Values{"gameId": {gameID}}
	}
	return r
}

func (c *Client) GetAccount(ctx context.Context) (types.Account, error) {
	var out types.Account
	_, err := c.Do(ctx, get("get-account", ""), &out)
	return out, err
}

func (c *Client) GetClickSound(ctx context.Context) (string, error) {
	var out struct {
		ClickSound string `json:"clickSound"`
	}
	_, err := c.Do(ctx, get("get-click-sound", ""), &out)
	return out.ClickSound, err
}

func (c *Client) GetCardTheme(ctx context.Context) (string, error) {
	var out struct {
		CardTheme string `json:"cardTheme"`
	}
	_, err := c.Do(ctx, get("get-card-theme", ""), &out)
	return out.CardTheme, err
}

func (c *Client) GetPlayers(ctx context.Context, gameID string) ([]types.Player, error) {
	var out struct {
		Players []types.Player `json:"players"`
	}
	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "get-players/" + url.PathEscape(gameID)}, &out)
	return out.Players, err
}

func (c *Client) GetPlayerID(ctx context.Context, gameID string) (string, error) {
	var out struct {
		PlayerID string `json:"playerId"`
	}
	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "get-player-id/" + url.PathEscape(gameID)}, &out)
	return out.PlayerID, err
}

func (c *Client) IsGameMaster(ctx context.Context, gameID string) (bool, error) {
	var out struct {
		IsGameMaster bool `json:"isGameMaster"`
	}
	_, err := c.Do(ctx, get("is-game-master", gameID), &out)
	return out.IsGameMaster, err
}

func (c *Client) GetPlayerCards(ctx context.Context, gameID string) ([]types.Card, error) {
	var out struct {
		Cards []types.Card `json:"cards"`
	}
	_, err := c.Do(ctx, get("get-player-cards", gameID), &out)
	return out.Cards, err
}

// GetGameCards returns the phase 1 pyramid as a flat list.
func (c *Client) GetGameCards(ctx context.Context, gameID string) ([]types.Card, error) {
	var out struct {
		Cards []types.Card `json:"cards"`
	}
	_, err := c.Do(ctx, get("get-game-cards", gameID), &out)
	return out.Cards, err
}

// GetPhaseCards returns the phase 2 row layout or the phase 3 diamond.
func (c *Client) GetPhaseCards(ctx context.Context, gameID string) ([][]types.Card, error) {
	var out struct {
		Rows [][]types.Card `json:"rows"`
	}
	_, err := c.Do(ctx, get("get-phase-cards", gameID), &out)
	return out.Rows, err
}

func (c *Client) GetRound(ctx context.Context, gameID string) (int, error) {
	var out struct {
		Round int `json:"round"`
	}
	_, err := c.Do(ctx, get("get-round", gameID), &out)
	return out.Round, err
}

func (c *Client) GetCurrentPlayer(ctx context.Context, gameID string) (string, error) {
	var out struct {
		CurrentPlayer string `json:"currentPlayer"`
	}
	_, err := c.Do(ctx, get("get-current-player", gameID), &out)
	return out.CurrentPlayer, err
}

func (c *Client) GetDrinkCount(ctx context.Context, gameID string) (int, error) {
	var out struct {
		Drinks int `json:"drinks"`
	}
	_, err := c.Do(ctx, get("get-drink-count", gameID), &out)
	return out.Drinks, err
}

func (c *Client) GetIsRowFlipped(ctx context.Context, gameID string) (bool, error) {
	var out struct {
		IsRowFlipped bool `json:"isRowFlipped"`
	}
	_, err := c.Do(ctx, get("get-is-row-flipped", gameID), &out)
	return out.IsRowFlipped, err
}

func (c *Client) GetBusfahrer(ctx context.Context, gameID string) (string, error) {
	var out struct {
		Busfahrer string `json:"busfahrer"`
	}
	_, err := c.Do(ctx, get("get-busfahrer", gameID), &out)
	return out.Busfahrer, err
}

func (c *Client) GetHasToEx(ctx context.Context, gameID string) (bool, error) {
	var out struct {
		HasToEx bool `json:"hasToEx"`
	}
	_, err := c.Do(ctx, get("get-has-to-ex", gameID), &out)
	return out.HasToEx, err
}

func (c *Client) AllCardsPlayed(ctx context.Context, gameID string) (bool, error) {
	var out struct {
		AllCardsPlayed bool `json:"allCardsPlayed"`
	}
	_, err := c.Do(ctx, get("all-cards-played", gameID), &out)
	return out.AllCardsPlayed, err
}

func (c *Client) GetWaitingGames(ctx context.Context) ([]types.GameSummary, error) {
	var out struct {
		Games []types.GameSummary `json:"games"`
	}
	_, err := c.Do(ctx, get("get-waiting-games", ""), &out)
	return out.Games, err
}

func (c *Client) GetFriends(ctx context.Context) ([]types.Friend, error) {
	var out struct {
		Friends []types.Friend `json:"friends"`
	}
	_, err := c.Do(ctx, get("get-friends", ""), &out)
	return out.Friends, err
}

func (c *Client) GetFriendRequests(ctx context.Context) ([]types.FriendRequest, error) {
	var out struct {
		Requests []types.FriendRequest `json:"requests"`
	}
	_, err := c.Do(ctx, get("get-friend-requests", ""), &out)
	return out.Requests, err
}

func (c *Client) GetFriendCode(ctx context.Context) (string, error) {
	var out struct {
		FriendCode string `json:"friendCode"`
	}
	_, err := c.Do(ctx, get("get-friend-code", ""), &out)
	return out.FriendCode, err
}
