package handler

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/yahtzee/internal/game/room"
	"github.com/palemoky/yahtzee/internal/protocol"
	"github.com/palemoky/yahtzee/internal/protocol/codec"
	"github.com/palemoky/yahtzee/internal/server/storage"
	"github.com/palemoky/yahtzee/internal/types"
)

// Leaderboard 排行榜查询与记录
type Leaderboard interface {
	RecordGame(ctx context.Context, result storage.GameResult) error
	GetLeaderboard(ctx context.Context, board string, limit int) ([]storage.LeaderboardEntry, error)
}

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server      types.ServerInterface
	RoomManager *room.RoomManager
	Leaderboard Leaderboard // 未启用 Redis 时为 nil
}

// Handler 消息处理器
type Handler struct {
	server      types.ServerInterface
	roomManager *room.RoomManager
	leaderboard Leaderboard
	handlers    map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server:      deps.Server,
		roomManager: deps.RoomManager,
		leaderboard: deps.Leaderboard,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing: h.handlePing,

		// 房间操作
		protocol.MsgCreateRoom: func(c types.ClientInterface, _ *protocol.Message) { h.handleCreateRoom(c) },
		protocol.MsgJoinRoom:   h.handleJoinRoom,
		protocol.MsgLeaveRoom:  h.handleLeaveRoom,
		protocol.MsgStartGame:  h.handleStartGame,

		// 游戏操作
		protocol.MsgRollDice:    h.handleRollDice,
		protocol.MsgToggleHold:  h.handleToggleHold,
		protocol.MsgSelectScore: h.handleSelectScore,

		// 信息查询
		protocol.MsgGetRoomList:    func(c types.ClientInterface, _ *protocol.Message) { h.handleGetRoomList(c) },
		protocol.MsgGetLeaderboard: h.handleGetLeaderboard,
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	log.Warn().Str("type", string(msg.Type)).Str("conn", client.GetID()).
		Int("payload_bytes", len(msg.Payload)).Msg("⚠️ 未知消息类型")
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// sendError 仅向发起操作的连接发送错误
func sendError(client types.ClientInterface, err error) {
	if err != nil {
		client.SendMessage(codec.NewGameErrorMessage(err))
	}
}
