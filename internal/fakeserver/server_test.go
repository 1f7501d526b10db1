package fakeserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

func TestServer_StubAndRecord(t *testing.T) {
	srv := New(nil)
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	srv.Stub(http.MethodGet, "get-round", http.StatusOK, map[string]int{"round": 2})

	resp, err := http.Get(ts.URL + "/api/get-round?gameId=g1")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/unknown")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.Equal(t, 1, srv.RequestCount(http.MethodGet, "get-round"))
	require.Equal(t, "gameId=g1", srv.Requests()[0].Query)
}

func TestServer_RegisterAndPush(t *testing.T) {
	srv := New(nil)
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+ts.URL[len("http"):]+"/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"subscribe","gameId":"g1"}`)))

	msg, err := types.NewPush(types.EvtDrinkUpdate, map[string]int{"drinks": 3})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return srv.Push(types.GameTopic("g1"), msg)
	}, time.Second, 10*time.Millisecond)

	_, frame, err := conn.Read(ctx)
	require.NoError(t, err)
	got, err := types.ParsePush(frame)
	require.NoError(t, err)
	require.Equal(t, types.EvtDrinkUpdate, got.Type)

	regs := srv.Registrations()
	require.Len(t, regs, 1)
	require.Equal(t, types.GameTopic("g1").Key(), regs[0].Key)
	require.Equal(t, 1, srv.Connections())

	srv.DropConnections()
	_, _, err = conn.Read(ctx)
	require.Error(t, err)
	require.Eventually(t, func() bool { return srv.Connections() == 0 }, time.Second, 10*time.Millisecond)
}

func TestChannel_DropSlowConsumer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewChannel(ctx, "lobby")
	out := make(chan types.PushMessage, 1)
	c.Send(Join{ConnID: "c1", Outbox: out})
	c.Send(Publish{Msg: types.PushMessage{Type: types.EvtLobbysUpdate}})
	c.Send(Publish{Msg: types.PushMessage{Type: types.EvtLobbysUpdate}})

	v, ok := c.State()
	require.True(t, ok)
	require.Equal(t, 0, v.NumConns)
	require.Equal(t, 2, v.Published)
}

func TestHub_EnsureReturnsSameChannel(t *testing.T) {
	h := NewHub(context.Background())
	defer h.Shutdown()

	a := h.Ensure("subscribe|gameId=\"g1\"")
	b := h.Get("subscribe|gameId=\"g1\"")
	if a == nil || b == nil || a != b {
		t.Fatalf("expected same channel pointer")
	}
	require.Nil(t, h.Get("lobby"))
	require.Len(t, h.List(), 1)
}
