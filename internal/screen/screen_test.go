package screen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/busfahrer-client/internal/api"
	"github.com/DoyleJ11/busfahrer-client/internal/fakeserver"
	"github.com/DoyleJ11/busfahrer-client/internal/guard"
	"github.com/DoyleJ11/busfahrer-client/internal/notify"
	"github.com/DoyleJ11/busfahrer-client/internal/view"
	"github.com/DoyleJ11/busfahrer-client/internal/ws"
	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

type env struct {
	fs   *fakeserver.Server
	deps Deps
	rec  *notify.Recorder
	ctx  context.Context
}

func newEnv(t *testing.T) *env {
	t.Helper()
	fs := fakeserver.New(nil)
	ts := httptest.NewServer(fs)
	t.Cleanup(func() {
		fs.Close()
		ts.Close()
	})

	client, err := api.New(ts.URL + "/api/")
	require.NoError(t, err)
	mgr := ws.NewManager(ws.Options{
		URL:            "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws",
		HTTPClient:     client.HTTPClient(),
		ReconnectDelay: 50 * time.Millisecond,
		DialTimeout:    time.Second,
	})

	rec := notify.NewRecorder(true)
	return &env{
		fs:   fs,
		deps: Deps{API: client, WS: mgr},
		rec:  rec,
		ctx:  notify.WithSignaler(context.Background(), rec),
	}
}

// stubTable scripts a game g1 in which "me" sits with "bob" and bob is on turn.
func (e *env) stubTable() {
	get := http.MethodGet
	e.fs.Stub(get, "get-player-id/g1", 200, map[string]any{"playerId": "me"})
	e.fs.Stub(get, "get-players/g1", 200, map[string]any{"players": []types.Player{{ID: "me"}, {ID: "bob"}}})
	e.fs.Stub(get, "is-game-master", 200, map[string]any{"isGameMaster": false})
	e.fs.Stub(get, "get-player-cards", 200, map[string]any{"cards": []types.Card{{Suit: "hearts", Value: "2"}, {Suit: "clubs", Value: "3"}, {Suit: "spades", Value: "4"}}})
	e.fs.Stub(get, "get-round", 200, map[string]any{"round": 1})
	e.fs.Stub(get, "get-current-player", 200, map[string]any{"currentPlayer": "bob"})
	e.fs.Stub(get, "get-drink-count", 200, map[string]any{"drinks": 0})
	e.fs.Stub(get, "get-game-cards", 200, map[string]any{"cards": []types.Card{}})
	e.fs.Stub(get, "get-phase-cards", 200, map[string]any{"rows": [][]types.Card{}})
	e.fs.Stub(get, "get-is-row-flipped", 200, map[string]any{"isRowFlipped": false})
	e.fs.Stub(get, "all-cards-played", 200, map[string]any{"allCardsPlayed": false})
}

func (e *env) posts() int {
	n := 0
	for _, r := range e.fs.Requests() {
		if r.Method == http.MethodPost {
			n++
		}
	}
	return n
}

func mountLoaded[S any](t *testing.T, e *env, def Definition[S], loaded func(S) bool) *Screen[S] {
	t.Helper()
	s, err := Mount(e.ctx, e.deps, def, Params{GameID: "g1"})
	require.NoError(t, err)
	t.Cleanup(s.Unmount)
	require.Eventually(t, func() bool { return loaded(s.State()) }, waitFor, tick)
	return s
}

// pushEventually retries until the game topic has a registered socket.
func pushEventually(t *testing.T, e *env, sub types.Subscription, evt string, data any) {
	t.Helper()
	msg, err := types.NewPush(evt, data)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return e.fs.Push(sub, msg) }, waitFor, tick)
}

func TestMount_BaselineAndDrinkPush(t *testing.T) {
	e := newEnv(t)
	e.stubTable()
	s := mountLoaded(t, e, Phase1(), func(s view.Phase1) bool { return s.Loaded })

	st := s.State()
	assert.Equal(t, "me", st.SelfID)
	assert.Equal(t, "bob", st.CurrentPlayer)
	assert.Len(t, st.Hand, 3)

	pushEventually(t, e, types.GameTopic("g1"), types.EvtDrinkUpdate, map[string]int{"drinks": 3})
	require.Eventually(t, func() bool { return s.State().DrinkCount == 3 }, waitFor, tick)
	assert.Zero(t, e.posts())
	assert.Empty(t, e.rec.Popups())
}

func TestMount_RegistersGameTopics(t *testing.T) {
	e := newEnv(t)
	e.stubTable()
	mountLoaded(t, e, GameLobby(), func(s view.GameLobby) bool { return s.Loaded })

	require.Eventually(t, func() bool { return len(e.fs.Registrations()) == 2 }, waitFor, tick)
	var frames []string
	for _, r := range e.fs.Registrations() {
		frames = append(frames, string(r.Frame))
	}
	assert.ElementsMatch(t, []string{
		`{"gameId":"g1","type":"subscribe"}`,
		`{"gameId":"g1","type":"gameChat"}`,
	}, frames)
}

func TestPhaseSignal_NavigatesAndStops(t *testing.T) {
	e := newEnv(t)
	e.stubTable()
	s := mountLoaded(t, e, Phase1(), func(s view.Phase1) bool { return s.Loaded })

	pushEventually(t, e, types.GameTopic("g1"), types.EvtPhase2, nil)
	require.Eventually(t, func() bool { return len(e.rec.Routes()) == 1 }, waitFor, tick)
	assert.Equal(t, notify.Route{Path: "/phase2/g1"}, e.rec.Routes()[0])

	// the screen dropped its sockets; nothing is delivered any more
	require.Eventually(t, func() bool { return e.deps.WS.Active() == 0 }, waitFor, tick)
	msg, _ := types.NewPush(types.EvtDrinkUpdate, map[string]int{"drinks": 7})
	e.fs.Push(types.GameTopic("g1"), msg)

	st := s.State()
	assert.True(t, st.Terminal())
	assert.Zero(t, st.DrinkCount)

	ok, err := s.Dispatch(context.Background(), view.Phase1.NextPlayer)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestDispatch_NotPermittedMakesNoCall(t *testing.T) {
	e := newEnv(t)
	e.stubTable()
	s := mountLoaded(t, e, Phase2(), func(s view.Phase2) bool { return s.Loaded })

	ok, err := s.Dispatch(context.Background(), func(st view.Phase2) (view.Command, bool) { return st.LayCard(2) })
	require.NoError(t, err)
	assert.False(t, ok)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, e.posts())
}

func TestDispatch_ValidationErrorIsTitledPopup(t *testing.T) {
	e := newEnv(t)
	e.stubTable()
	e.fs.Stub(http.MethodGet, "get-current-player", 200, map[string]any{"currentPlayer": "me"})
	e.fs.Stub(http.MethodPost, "lay-card", 200, map[string]any{"title": "Wrong card", "error": "That card does not match."})
	s := mountLoaded(t, e, Phase1(), func(s view.Phase1) bool { return s.Loaded })

	ok, err := s.Dispatch(context.Background(), func(st view.Phase1) (view.Command, bool) { return st.LayCard(0) })
	require.NoError(t, err)
	require.True(t, ok)

	require.Eventually(t, func() bool { return len(e.rec.Popups()) == 1 }, waitFor, tick)
	assert.Equal(t, notify.Popup{Title: "Wrong card", Message: "That card does not match.", Kind: notify.KindError}, e.rec.Popups()[0])
	assert.Equal(t, 1, e.fs.RequestCount(http.MethodPost, "lay-card"))
	assert.Empty(t, e.rec.Routes())
}

func TestDispatch_ThenNavigates(t *testing.T) {
	e := newEnv(t)
	e.fs.Stub(http.MethodGet, "get-waiting-games", 200, map[string]any{"games": []types.GameSummary{}})
	e.fs.Stub(http.MethodPost, "create-game", 200, map[string]any{"gameId": "g7"})
	s := mountLoaded(t, e, Lobbies(), func(s view.LobbyList) bool { return s.Loaded })

	ok, err := s.Dispatch(context.Background(), func(st view.LobbyList) (view.Command, bool) { return st.CreateGame("Friday", false) })
	require.NoError(t, err)
	require.True(t, ok)

	require.Eventually(t, func() bool { return len(e.rec.Routes()) == 1 }, waitFor, tick)
	assert.Equal(t, notify.Route{Path: "/game/g7"}, e.rec.Routes()[0])
}

func TestBaselineFailure_StateUnchangedOnePopup(t *testing.T) {
	e := newEnv(t)
	e.stubTable()
	e.fs.StubNetworkFailure(http.MethodGet, "get-players/g1")
	s := mountLoaded(t, e, GameLobby(), func(s view.GameLobby) bool { return s.Loaded })

	st := s.State()
	assert.Empty(t, st.Players)
	assert.Equal(t, "me", st.SelfID)
	require.Eventually(t, func() bool { return len(e.rec.Popups()) >= 1 }, waitFor, tick)
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, e.rec.Popups(), 1)
	assert.Empty(t, e.rec.Routes())
}

func TestBaselineFailure_SeveralFetchesOnePopup(t *testing.T) {
	e := newEnv(t)
	e.stubTable()
	e.fs.StubNetworkFailure(http.MethodGet, "get-players/g1")
	e.fs.StubNetworkFailure(http.MethodGet, "get-round")
	e.fs.StubNetworkFailure(http.MethodGet, "get-game-cards")
	s := mountLoaded(t, e, Phase1(), func(s view.Phase1) bool { return s.Loaded })

	st := s.State()
	assert.Empty(t, st.Players)
	assert.Zero(t, st.Round)
	assert.Len(t, st.Hand, 3)
	require.Len(t, e.rec.Popups(), 1, "popup is posted before the screen turns loaded")
	assert.Equal(t, "Connection problem", e.rec.Popups()[0].Title)
}

func TestGuardDenied(t *testing.T) {
	e := newEnv(t)
	e.fs.Stub(http.MethodGet, "get-player-id/g1", 200, map[string]any{"playerId": ""})

	s, err := Mount(e.ctx, e.deps, Phase1(), Params{GameID: "g1"})
	assert.ErrorIs(t, err, guard.ErrDenied)
	assert.Nil(t, s)
	assert.Equal(t, []notify.Route{{Path: "/", Replace: true}}, e.rec.Routes())
	assert.Zero(t, e.deps.WS.Opened())
	assert.Equal(t, 1, len(e.fs.Requests()), "only the guard probe")
}

func TestUnmount_ClosesConnections(t *testing.T) {
	e := newEnv(t)
	e.stubTable()
	s := mountLoaded(t, e, GameLobby(), func(s view.GameLobby) bool { return s.Loaded })
	require.Eventually(t, func() bool { return e.deps.WS.Active() == 2 }, waitFor, tick)

	s.Unmount()
	s.Unmount()

	assert.Zero(t, e.deps.WS.Active())
	require.Eventually(t, func() bool { return e.fs.Connections() == 0 }, waitFor, tick)
	assert.Equal(t, []websocket.StatusCode{websocket.StatusNormalClosure, websocket.StatusNormalClosure}, e.fs.CloseStatuses())
	select {
	case <-s.Done():
	default:
		t.Fatalf("loop still running after unmount")
	}

	_, err := s.Dispatch(context.Background(), view.GameLobby.StartGame)
	assert.ErrorIs(t, err, ErrStopped)
}
