package handler

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/yahtzee/internal/apperrors"
	"github.com/palemoky/yahtzee/internal/game/room"
	"github.com/palemoky/yahtzee/internal/protocol"
	"github.com/palemoky/yahtzee/internal/protocol/codec"
	"github.com/palemoky/yahtzee/internal/types"
)

// handleCreateRoom 处理创建房间，创建者需要再发送 join_room 入座
func (h *Handler) handleCreateRoom(client types.ClientInterface) {
	if h.server.IsMaintenanceMode() {
		client.SendMessage(codec.NewErrorMessageWithText(
			protocol.ErrCodeServerMaintenance, "服务器维护中，暂停创建房间"))
		return
	}

	r := h.roomManager.CreateRoom()
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
		Code: r.Code,
	}))
	log.Debug().Str("room", r.Code).Str("conn", client.GetID()).Msg("🏠 通过 WebSocket 创建房间")
}

// handleJoinRoom 处理加入房间
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	if h.server.IsMaintenanceMode() {
		client.SendMessage(codec.NewErrorMessageWithText(
			protocol.ErrCodeServerMaintenance, "服务器维护中，暂停加入房间"))
		return
	}

	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		sendError(client, err)
		return
	}

	r := h.roomManager.GetRoom(normalizeCode(payload.Code))
	if r == nil {
		sendError(client, apperrors.ErrRoomNotFound)
		return
	}

	previous := client.GetRoom()
	if err := r.Join(client, payload.Name); err != nil {
		sendError(client, err)
		return
	}

	// 新房间入座成功后再离开原房间，失败时保留原座位
	if previous != "" && previous != r.Code {
		if old := h.roomManager.GetRoom(previous); old != nil {
			old.Leave(client)
		}
	}
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface, msg *protocol.Message) {
	h.withRoom(client, msg, func(r *room.Room) error {
		if !r.Leave(client) {
			return apperrors.ErrNotInRoom
		}
		return nil
	})
}

// handleStartGame 处理房主开始游戏
func (h *Handler) handleStartGame(client types.ClientInterface, msg *protocol.Message) {
	h.withRoom(client, msg, func(r *room.Room) error {
		return r.Start(client)
	})
}

// handleGetRoomList 获取可加入的房间列表
func (h *Handler) handleGetRoomList(client types.ClientInterface) {
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomListResult, protocol.RoomListResultPayload{
		Rooms: h.roomManager.GetRoomList(),
	}))
}

// withRoom 解析只带房间号的请求，房间不存在时静默忽略
func (h *Handler) withRoom(client types.ClientInterface, msg *protocol.Message, action func(r *room.Room) error) {
	payload, err := codec.ParsePayload[protocol.RoomPayload](msg)
	if err != nil {
		sendError(client, err)
		return
	}

	r := h.lookup(client, payload.Code)
	if r == nil {
		return
	}
	sendError(client, action(r))
}

// lookup 查找房间，不存在时返回 nil
func (h *Handler) lookup(client types.ClientInterface, code string) *room.Room {
	r := h.roomManager.GetRoom(normalizeCode(code))
	if r == nil {
		log.Debug().Str("room", code).Str("conn", client.GetID()).Msg("房间不存在，忽略请求")
	}
	return r
}

// normalizeCode 房间号统一为大写
func normalizeCode(code string) string {
	return strings.ToUpper(code)
}
