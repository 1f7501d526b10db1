// Package view holds the client-side view state of every screen and the pure
// reducers that fold push messages into it. Nothing here performs I/O: pushes
// map to a new state plus effects, and user actions map to the REST command
// that should be issued, or to nothing when the action is not allowed.
package view

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/DoyleJ11/busfahrer-client/internal/api"
	"github.com/DoyleJ11/busfahrer-client/internal/notify"
	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

const (
	HomePath  = "/"
	LoginPath = "/login"
)

func GamePath(gameID string) string { return "/game/" + url.PathEscape(gameID) }

func PhasePath(phase int, gameID string) string {
	return fmt.Sprintf("/phase%d/%s", phase, url.PathEscape(gameID))
}

type Effect interface{ isEffect() }

type Navigate struct {
	Path    string
	Replace bool
}

type Notify struct {
	Popup notify.Popup
}

// Malformed reports a handled push whose payload did not have the expected shape.
type Malformed struct {
	Type string
	Err  error
}

func (Navigate) isEffect()  {}
func (Notify) isEffect()    {}
func (Malformed) isEffect() {}

// Command is a REST call an action resolved to. Then, if set, maps the
// success body to effects (navigation after create/join/leave).
type Command struct {
	Request api.Request
	Then    func(body json.RawMessage) []Effect
}

func do(req api.Request) (Command, bool) { return Command{Request: req}, true }

func none() (Command, bool) { return Command{}, false }

type Stage int

const (
	StageLoading Stage = iota
	StageIdle
	StageAwaitingFlip
	StageAwaitingPlay
	StageReadyForNext
	StageTransitioning
)

func (s Stage) String() string {
	switch s {
	case StageLoading:
		return "loading"
	case StageIdle:
		return "idle"
	case StageAwaitingFlip:
		return "awaiting-flip"
	case StageAwaitingPlay:
		return "awaiting-play"
	case StageReadyForNext:
		return "ready-for-next"
	case StageTransitioning:
		return "transitioning"
	default:
		return "unknown"
	}
}

func decode(m types.PushMessage, v any) []Effect {
	if err := m.Decode(v); err != nil {
		return []Effect{Malformed{Type: m.Type, Err: err}}
	}
	return nil
}

func missing(m types.PushMessage, field string) []Effect {
	return []Effect{Malformed{Type: m.Type, Err: fmt.Errorf("missing %s", field)}}
}

func leave(path, title, message string) []Effect {
	return []Effect{
		Notify{Popup: notify.Popup{Title: title, Message: message, Kind: notify.KindInfo}},
		Navigate{Path: path, Replace: true},
	}
}

func navigateThen(path string, replace bool) func(json.RawMessage) []Effect {
	return func(json.RawMessage) []Effect {
		return []Effect{Navigate{Path: path, Replace: replace}}
	}
}
