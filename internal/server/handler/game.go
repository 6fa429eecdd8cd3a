package handler

import (
	"github.com/palemoky/yahtzee/internal/game/room"
	"github.com/palemoky/yahtzee/internal/protocol"
	"github.com/palemoky/yahtzee/internal/protocol/codec"
	"github.com/palemoky/yahtzee/internal/types"
)

// handleRollDice 处理掷骰
func (h *Handler) handleRollDice(client types.ClientInterface, msg *protocol.Message) {
	h.withRoom(client, msg, func(r *room.Room) error {
		return r.Roll(client)
	})
}

// handleToggleHold 处理切换骰子保留状态
func (h *Handler) handleToggleHold(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.ToggleHoldPayload](msg)
	if err != nil {
		sendError(client, err)
		return
	}

	if r := h.lookup(client, payload.Code); r != nil {
		sendError(client, r.ToggleHold(client, payload.DiceIndex, payload.Value))
	}
}

// handleSelectScore 处理选择计分项
func (h *Handler) handleSelectScore(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.SelectScorePayload](msg)
	if err != nil {
		sendError(client, err)
		return
	}

	if r := h.lookup(client, payload.Code); r != nil {
		sendError(client, r.SelectScore(client, payload.Category))
	}
}
