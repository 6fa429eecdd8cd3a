package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/yahtzee/internal/config"
	"github.com/palemoky/yahtzee/internal/game/session"
	"github.com/palemoky/yahtzee/internal/protocol"
	"github.com/palemoky/yahtzee/internal/protocol/codec"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Game.RoomCleanupDelay = 0
	cfg.Game.ShutdownCheckInterval = 1
	cfg.Security.RateLimit.MaxPerSecond = 100
	cfg.Security.RateLimit.MaxPerMinute = 1000
	cfg.Security.MessageLimit.MaxPerSecond = 100
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *httptest.Server) {
	t.Helper()

	s, err := NewServer(cfg)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(func() {
		ts.Close()
		s.Shutdown()
	})
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil 读取消息直到出现指定类型
func readUntil(t *testing.T, conn *websocket.Conn, want protocol.MessageType) *protocol.Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		frameType, data, err := conn.ReadMessage()
		require.NoError(t, err)

		format := codec.FormatJSON
		if frameType == websocket.BinaryMessage {
			format = codec.FormatProtobuf
		}
		msg, err := codec.Decode(data, format)
		require.NoError(t, err)
		if msg.Type == want {
			return msg
		}
	}
}

func sendJSON(t *testing.T, conn *websocket.Conn, msgType protocol.MessageType, payload any) {
	t.Helper()
	data, err := codec.EncodeJSON(codec.MustNewMessage(msgType, payload))
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func sendBinary(t *testing.T, conn *websocket.Conn, msgType protocol.MessageType, payload any) {
	t.Helper()
	data, err := codec.EncodeBinary(codec.MustNewMessage(msgType, payload))
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, data))
}

func payloadOf[T any](t *testing.T, msg *protocol.Message) *T {
	t.Helper()
	p, err := codec.ParsePayload[T](msg)
	require.NoError(t, err)
	return p
}

func TestHTTP_RoomEndpoints(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, testConfig())

	resp, err := http.Post(ts.URL+"/rooms", "application/json", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created protocol.RoomCreatedPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Len(t, created.Code, 6)

	// 新建的空房间可以立即查询
	got, err := http.Get(ts.URL + "/rooms/" + created.Code)
	require.NoError(t, err)
	defer func() { _ = got.Body.Close() }()
	require.Equal(t, http.StatusOK, got.StatusCode)

	var info protocol.RoomInfo
	require.NoError(t, json.NewDecoder(got.Body).Decode(&info))
	assert.Equal(t, created.Code, info.Code)
	assert.Equal(t, "waiting", info.Phase)
	assert.Empty(t, info.Players)

	list, err := http.Get(ts.URL + "/rooms")
	require.NoError(t, err)
	defer func() { _ = list.Body.Close() }()
	var rooms protocol.RoomListResultPayload
	require.NoError(t, json.NewDecoder(list.Body).Decode(&rooms))
	require.Len(t, rooms.Rooms, 1)
	assert.Equal(t, created.Code, rooms.Rooms[0].Code)
}

func TestHTTP_RoomNotFound(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, testConfig())

	resp, err := http.Get(ts.URL + "/rooms/NOPE00")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body protocol.ErrorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, protocol.ErrCodeRoomNotFound, body.Code)
}

func TestHTTP_Health(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, testConfig())
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTP_LeaderboardDisabled(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, testConfig())
	resp, err := http.Get(ts.URL + "/leaderboard")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHTTP_Leaderboard(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()
	s, ts := newTestServer(t, cfg)

	alice := session.Standing{Player: session.Player{Name: "Alice"}, Total: 240}
	bob := session.Standing{Player: session.Player{Name: "Bob"}, Total: 190}
	s.recordGame("ABC123", session.Outcome{Winner: alice, Standings: []session.Standing{alice, bob}})

	resp, err := http.Get(ts.URL + "/leaderboard?limit=5")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result protocol.LeaderboardResultPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "total", result.Type)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, "Alice", result.Entries[0].PlayerName)
	assert.Equal(t, 240, result.Entries[0].BestScore)
	assert.Equal(t, 1, result.Entries[0].Wins)

	bad, err := http.Get(ts.URL + "/leaderboard?type=weekly")
	require.NoError(t, err)
	defer func() { _ = bad.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestNewServer_RedisUnavailable(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = addr
	_, err := NewServer(cfg)
	assert.Error(t, err)
}

func TestWebSocket_GameFlow(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, testConfig())

	alice := dial(t, ts)
	connected := payloadOf[protocol.ConnectedPayload](t, readUntil(t, alice, protocol.MsgConnected))
	assert.NotEmpty(t, connected.ConnID)

	sendJSON(t, alice, protocol.MsgCreateRoom, nil)
	code := payloadOf[protocol.RoomCreatedPayload](t, readUntil(t, alice, protocol.MsgRoomCreated)).Code

	sendJSON(t, alice, protocol.MsgJoinRoom, protocol.JoinRoomPayload{Code: code, Name: "Alice"})
	joined := payloadOf[protocol.JoinedPayload](t, readUntil(t, alice, protocol.MsgJoined))
	assert.True(t, joined.IsHost)

	// 第二个连接使用二进制帧
	bob := dial(t, ts)
	readUntil(t, bob, protocol.MsgConnected)
	sendBinary(t, bob, protocol.MsgJoinRoom, protocol.JoinRoomPayload{Code: code, Name: "Bob"})
	require.NoError(t, bob.SetReadDeadline(time.Now().Add(3*time.Second)))
	frameType, data, err := bob.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, frameType)
	msg, err := codec.DecodeBinary(data)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgJoined, msg.Type)

	list := payloadOf[protocol.PlayerListPayload](t, readUntil(t, alice, protocol.MsgPlayerList))
	if len(list.Players) == 1 {
		list = payloadOf[protocol.PlayerListPayload](t, readUntil(t, alice, protocol.MsgPlayerList))
	}
	assert.Equal(t, []string{"Alice", "Bob"}, list.Players)

	sendJSON(t, alice, protocol.MsgStartGame, protocol.RoomPayload{Code: code})
	started := payloadOf[protocol.GameStartedPayload](t, readUntil(t, bob, protocol.MsgGameStarted))
	assert.Equal(t, "Alice", started.CurrentTurnName)

	sendJSON(t, alice, protocol.MsgRollDice, protocol.RoomPayload{Code: code})
	rolled := payloadOf[protocol.DiceRolledPayload](t, readUntil(t, bob, protocol.MsgDiceRolled))
	assert.Len(t, rolled.Dice, 5)
	assert.Equal(t, 2, rolled.RollsLeft)
	for _, d := range rolled.Dice {
		assert.GreaterOrEqual(t, d, 1)
		assert.LessOrEqual(t, d, 6)
	}

	// 不是 Bob 的回合，错误只发给 Bob
	sendBinary(t, bob, protocol.MsgRollDice, protocol.RoomPayload{Code: code})
	errMsg := payloadOf[protocol.ErrorPayload](t, readUntil(t, bob, protocol.MsgError))
	assert.Equal(t, protocol.ErrCodeNotYourTurn, errMsg.Code)

	sendJSON(t, alice, protocol.MsgSelectScore, protocol.SelectScorePayload{Code: code, Category: "chance"})
	ended := payloadOf[protocol.TurnEndedPayload](t, readUntil(t, alice, protocol.MsgTurnEnded))
	assert.Equal(t, "Bob", ended.Name)

	// Bob 断开后 Alice 收到更新后的列表和回合
	require.NoError(t, bob.Close())
	list = payloadOf[protocol.PlayerListPayload](t, readUntil(t, alice, protocol.MsgPlayerList))
	assert.Equal(t, []string{"Alice"}, list.Players)
	ended = payloadOf[protocol.TurnEndedPayload](t, readUntil(t, alice, protocol.MsgTurnEnded))
	assert.Equal(t, "Alice", ended.Name)

	assert.Eventually(t, func() bool { return s.GetOnlineCount() == 1 }, 2*time.Second, 20*time.Millisecond)
}

func TestWebSocket_ConsecutiveMessages(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, testConfig())
	conn := dial(t, ts)
	readUntil(t, conn, protocol.MsgConnected)

	// 读取路径复用消息对象，连续请求互不影响
	sendJSON(t, conn, protocol.MsgPing, protocol.PingPayload{Timestamp: 1})
	sendBinary(t, conn, protocol.MsgPing, protocol.PingPayload{Timestamp: 2})
	sendJSON(t, conn, protocol.MsgCreateRoom, nil)

	first := payloadOf[protocol.PongPayload](t, readUntil(t, conn, protocol.MsgPong))
	second := payloadOf[protocol.PongPayload](t, readUntil(t, conn, protocol.MsgPong))
	assert.Equal(t, int64(1), first.ClientTimestamp)
	assert.Equal(t, int64(2), second.ClientTimestamp)

	created := payloadOf[protocol.RoomCreatedPayload](t, readUntil(t, conn, protocol.MsgRoomCreated))
	assert.Len(t, created.Code, 6)
}

func TestWebSocket_InvalidFrame(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, testConfig())
	conn := dial(t, ts)
	readUntil(t, conn, protocol.MsgConnected)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	errMsg := payloadOf[protocol.ErrorPayload](t, readUntil(t, conn, protocol.MsgError))
	assert.Equal(t, protocol.ErrCodeInvalidMsg, errMsg.Code)
}

func TestMaintenanceMode(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, testConfig())
	lobby := dial(t, ts)
	readUntil(t, lobby, protocol.MsgConnected)

	s.EnterMaintenanceMode()
	assert.True(t, s.IsMaintenanceMode())

	notice := payloadOf[protocol.ErrorPayload](t, readUntil(t, lobby, protocol.MsgError))
	assert.Equal(t, protocol.ErrCodeServerMaintenance, notice.Code)

	resp, err := http.Post(ts.URL+"/rooms", "application/json", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, wsResp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, wsResp)
	defer func() { _ = wsResp.Body.Close() }()
	assert.Equal(t, http.StatusServiceUnavailable, wsResp.StatusCode)
}

func TestGracefulShutdown_NoActiveGames(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, testConfig())
	conn := dial(t, ts)
	readUntil(t, conn, protocol.MsgConnected)

	done := make(chan struct{})
	go func() {
		s.GracefulShutdown(time.Second)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("graceful shutdown did not finish")
	}
	assert.True(t, s.IsMaintenanceMode())

	// 连接被关闭
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
