package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/yahtzee/internal/config"
	"github.com/palemoky/yahtzee/internal/protocol"
	"github.com/palemoky/yahtzee/internal/protocol/codec"
	"github.com/palemoky/yahtzee/internal/server"
)

var upgrader = websocket.Upgrader{}

func echoHandler(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer c.Close()
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			break
		}
		_ = c.WriteMessage(mt, message)
	}
}

func wsURL(ts *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + path
}

// waitFor 读取消息直到出现指定类型
func waitFor(t *testing.T, c *Client, want protocol.MessageType) *protocol.Message {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		msg, err := c.ReceiveWithTimeout(time.Until(deadline))
		require.NoError(t, err)
		if msg.Type == want {
			return msg
		}
	}
	t.Fatalf("未收到 %s", want)
	return nil
}

func TestClient_ConnectAndSend(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(echoHandler))
	defer ts.Close()

	c := NewClient(wsURL(ts, ""))
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()
	assert.True(t, c.IsConnected())

	require.NoError(t, c.JoinRoom("ABC123", "Alice"))

	msg := waitFor(t, c, protocol.MsgJoinRoom)
	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", payload.Code)
	assert.Equal(t, "Alice", payload.Name)
}

func TestClient_ConnectFails(t *testing.T) {
	t.Parallel()

	c := NewClient("ws://127.0.0.1:1/ws")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, c.Connect(ctx))
}

func TestClient_SendAfterClose(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(echoHandler))
	defer ts.Close()

	c := NewClient(wsURL(ts, ""))
	require.NoError(t, c.Connect(context.Background()))
	c.Close()
	c.Close()

	assert.False(t, c.IsConnected())
	assert.ErrorIs(t, c.Ping(), ErrClosed)
	_, err := c.ReceiveWithTimeout(100 * time.Millisecond)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClient_OnCloseWhenServerGoesAway(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.Close()
	}))
	defer ts.Close()

	closed := make(chan struct{})
	c := NewClient(wsURL(ts, ""))
	c.OnClose = func() { close(closed) }
	require.NoError(t, c.Connect(context.Background()))

	select {
	case <-closed:
	case <-time.After(3 * time.Second):
		t.Fatal("OnClose 未被调用")
	}
	<-c.Done()
}

func TestClient_AgainstServer(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Game.RoomCleanupDelay = 0
	cfg.Security.MessageLimit.MaxPerSecond = 100
	s, err := server.NewServer(cfg)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(func() {
		ts.Close()
		s.Shutdown()
	})

	c := NewClient(wsURL(ts, "/ws"))
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	connected := waitFor(t, c, protocol.MsgConnected)
	payload, err := codec.ParsePayload[protocol.ConnectedPayload](connected)
	require.NoError(t, err)
	assert.Equal(t, payload.ConnID, c.ConnID())
	assert.NotEmpty(t, c.ConnID())

	// 二进制帧往返
	require.NoError(t, c.Ping())
	waitFor(t, c, protocol.MsgPong)
	assert.GreaterOrEqual(t, c.Latency(), int64(0))

	require.NoError(t, c.CreateRoom())
	created, err := codec.ParsePayload[protocol.RoomCreatedPayload](waitFor(t, c, protocol.MsgRoomCreated))
	require.NoError(t, err)

	require.NoError(t, c.JoinRoom(created.Code, "Alice"))
	joined, err := codec.ParsePayload[protocol.JoinedPayload](waitFor(t, c, protocol.MsgJoined))
	require.NoError(t, err)
	assert.True(t, joined.IsHost)
	assert.NotEmpty(t, joined.PlayerID)

	require.NoError(t, c.GetRoomList())
	list, err := codec.ParsePayload[protocol.RoomListResultPayload](waitFor(t, c, protocol.MsgRoomListResult))
	require.NoError(t, err)
	require.Len(t, list.Rooms, 1)
	assert.Equal(t, created.Code, list.Rooms[0].Code)

	require.NoError(t, c.StartGame(created.Code))
	waitFor(t, c, protocol.MsgGameStarted)

	require.NoError(t, c.SelectScore(created.Code, "NotACategory"))
	errMsg, err := codec.ParsePayload[protocol.ErrorPayload](waitFor(t, c, protocol.MsgError))
	require.NoError(t, err)
	assert.NotZero(t, errMsg.Code)

	// 已开始的房间不再出现在列表中
	require.NoError(t, c.GetRoomList())
	list, err = codec.ParsePayload[protocol.RoomListResultPayload](waitFor(t, c, protocol.MsgRoomListResult))
	require.NoError(t, err)
	assert.Empty(t, list.Rooms)

	require.NoError(t, c.LeaveRoom(created.Code))
}
