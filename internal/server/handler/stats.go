package handler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/yahtzee/internal/protocol"
	"github.com/palemoky/yahtzee/internal/protocol/codec"
	"github.com/palemoky/yahtzee/internal/server/storage"
	"github.com/palemoky/yahtzee/internal/types"
)

const leaderboardTimeout = 3 * time.Second

// handleGetLeaderboard 获取排行榜
func (h *Handler) handleGetLeaderboard(client types.ClientInterface, msg *protocol.Message) {
	if h.leaderboard == nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeLeaderboardDisabled))
		return
	}

	payload, err := codec.ParsePayload[protocol.GetLeaderboardPayload](msg)
	if err != nil {
		sendError(client, err)
		return
	}
	if payload.Type == "" {
		payload.Type = storage.BoardTotal
	}

	ctx, cancel := context.WithTimeout(context.Background(), leaderboardTimeout)
	defer cancel()

	entries, err := h.leaderboard.GetLeaderboard(ctx, payload.Type, payload.Limit)
	if err != nil {
		log.Error().Err(err).Msg("获取排行榜失败")
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "获取排行榜失败"))
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgLeaderboardResult, protocol.LeaderboardResultPayload{
		Type:    payload.Type,
		Entries: LeaderboardEntries(entries),
	}))
}

// LeaderboardEntries 转换为协议格式
func LeaderboardEntries(entries []storage.LeaderboardEntry) []protocol.LeaderboardEntry {
	out := make([]protocol.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, protocol.LeaderboardEntry{
			Rank:       e.Rank,
			PlayerName: e.PlayerName,
			BestScore:  e.BestScore,
			Games:      e.Games,
			Wins:       e.Wins,
			WinRate:    e.WinRate,
		})
	}
	return out
}
