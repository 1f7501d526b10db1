package hub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/busfahrer-client/internal/api"
	"github.com/DoyleJ11/busfahrer-client/internal/fakeserver"
	"github.com/DoyleJ11/busfahrer-client/internal/notify"
	"github.com/DoyleJ11/busfahrer-client/internal/screen"
	"github.com/DoyleJ11/busfahrer-client/internal/view"
	"github.com/DoyleJ11/busfahrer-client/internal/ws"
	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

func newTestHub(t *testing.T, opts ...Option) (*Hub, *fakeserver.Server, *notify.Recorder, screen.Deps) {
	t.Helper()
	fs := fakeserver.New(nil)
	ts := httptest.NewServer(fs)
	t.Cleanup(func() {
		fs.Close()
		ts.Close()
	})

	client, err := api.New(ts.URL + "/api/")
	require.NoError(t, err)
	deps := screen.Deps{
		API: client,
		WS: ws.NewManager(ws.Options{
			URL:            "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws",
			ReconnectDelay: 50 * time.Millisecond,
		}),
	}
	rec := notify.NewRecorder(true)
	h := NewHub(context.Background(), deps, rec, opts...)
	t.Cleanup(func() { _ = h.Shutdown() })
	return h, fs, rec, deps
}

func currentName(h *Hub) string {
	if c := h.Current(); c.Screen != nil {
		return c.Screen.Name()
	}
	return ""
}

func TestHub_MountsRoute(t *testing.T) {
	h, fs, rec, _ := newTestHub(t)
	fs.Stub(http.MethodGet, "get-waiting-games", 200, map[string]any{"games": []types.GameSummary{{ID: "g1", Name: "Friday"}}})

	h.Open("/lobbies")
	require.Eventually(t, func() bool { return currentName(h) == "lobbies" }, waitFor, tick)

	c := h.Current()
	assert.Equal(t, "/lobbies", c.Path)
	assert.Equal(t, []string{"/lobbies"}, h.History())
	assert.Equal(t, []notify.Route{{Path: "/lobbies"}}, rec.Routes())

	require.Eventually(t, func() bool {
		st, ok := h.Current().Screen.Snapshot().(view.LobbyList)
		return ok && st.Loaded && len(st.Games) == 1
	}, waitFor, tick)
}

func TestHub_UnknownRouteMountsNothing(t *testing.T) {
	h, fs, _, _ := newTestHub(t)
	fs.Stub(http.MethodGet, "get-waiting-games", 200, map[string]any{"games": []types.GameSummary{}})

	h.Open("/lobbies")
	require.Eventually(t, func() bool { return currentName(h) == "lobbies" }, waitFor, tick)
	first := h.Current().Screen

	h.Open("/login")
	require.Eventually(t, func() bool { return h.Current().Path == "/login" }, waitFor, tick)
	assert.Nil(t, h.Current().Screen)
	assert.Equal(t, []string{"/lobbies", "/login"}, h.History())

	select {
	case <-first.Done():
	case <-time.After(waitFor):
		t.Fatalf("previous screen still running")
	}
}

func TestHub_GuardRedirectReplacesHistory(t *testing.T) {
	h, fs, rec, _ := newTestHub(t)
	fs.Stub(http.MethodGet, "get-player-id/g1", 401, map[string]any{"error": "not in game"})
	fs.Stub(http.MethodGet, "get-account", 200, map[string]any{"id": "me", "username": "me"})
	fs.Stub(http.MethodGet, "get-waiting-games", 200, map[string]any{"games": []types.GameSummary{}})

	h.Open("/phase1/g1")
	require.Eventually(t, func() bool { return currentName(h) == "home" }, waitFor, tick)

	assert.Equal(t, []string{"/"}, h.History())
	assert.Equal(t, []notify.Route{{Path: "/phase1/g1"}, {Path: "/", Replace: true}}, rec.Routes())
}

func TestHub_ScreenNavigationMountsNextPhase(t *testing.T) {
	h, fs, _, deps := newTestHub(t)
	fs.Stub(http.MethodGet, "get-player-id/g1", 200, map[string]any{"playerId": "me"})
	fs.Stub(http.MethodGet, "get-players/g1", 200, map[string]any{"players": []types.Player{{ID: "me"}}})

	h.Open("/game/g1")
	require.Eventually(t, func() bool { return currentName(h) == "game" }, waitFor, tick)

	msg, err := types.NewPush(types.EvtStart, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return fs.Push(types.GameTopic("g1"), msg) }, waitFor, tick)

	require.Eventually(t, func() bool { return currentName(h) == "phase1" }, waitFor, tick)
	c := h.Current()
	assert.Equal(t, "/phase1/g1", c.Path)
	assert.Equal(t, screen.Params{GameID: "g1"}, c.Screen.Params())
	assert.Equal(t, []string{"/game/g1", "/phase1/g1"}, h.History())

	// game + gameChat of the new screen only
	require.Eventually(t, func() bool { return deps.WS.Active() == 2 }, waitFor, tick)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestHub_ShutdownClosesEverything(t *testing.T) {
	errA, errB := errors.New("a"), errors.New("b")
	h, fs, _, deps := newTestHub(t,
		WithCloser(closerFunc(func() error { return errA })),
		WithCloser(closerFunc(func() error { return nil })),
		WithCloser(closerFunc(func() error { return errB })),
	)
	fs.Stub(http.MethodGet, "get-account", 200, map[string]any{"id": "me"})

	h.Open("/account")
	require.Eventually(t, func() bool { return deps.WS.Active() == 1 }, waitFor, tick)

	err := h.Shutdown()
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Zero(t, deps.WS.Active())
	assert.NoError(t, h.Shutdown())
	assert.Equal(t, Current{}, h.Current())
}

func TestHub_ParentCancelStillRunsClosers(t *testing.T) {
	errA := errors.New("a")
	closed := make(chan struct{})
	_, fs, _, deps := newTestHub(t)
	fs.Stub(http.MethodGet, "get-account", 200, map[string]any{"id": "me"})

	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(ctx, deps, notify.NewRecorder(true), WithCloser(closerFunc(func() error {
		close(closed)
		return errA
	})))
	h.Open("/account")
	require.Eventually(t, func() bool { return deps.WS.Active() == 1 }, waitFor, tick)

	cancel()
	select {
	case <-closed:
	case <-time.After(waitFor):
		t.Fatalf("closer did not run after parent cancel")
	}
	<-h.Done()

	assert.Zero(t, deps.WS.Active())
	assert.ErrorIs(t, h.Shutdown(), errA)
	assert.NoError(t, h.Shutdown())
}

func TestHub_Match(t *testing.T) {
	h, _, _, _ := newTestHub(t)
	cases := []struct {
		path   string
		ok     bool
		gameID string
	}{
		{"/", true, ""},
		{"/lobbies", true, ""},
		{"/game/abc", true, "abc"},
		{"/phase3/x-1", true, "x-1"},
		{"/login", false, ""},
		{"/phase4/x", false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			_, p, ok := h.match(tc.path)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.gameID, p.GameID)
		})
	}
}
