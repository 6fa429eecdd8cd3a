package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/yahtzee/internal/protocol"
	"github.com/palemoky/yahtzee/internal/protocol/codec"
	"github.com/palemoky/yahtzee/internal/sound"
)

// handleServerMessage 更新状态后按消息类型切换阶段和播放音效
func (m *OnlineModel) handleServerMessage(msg *protocol.Message) tea.Cmd {
	if err := m.state.Apply(msg); err != nil {
		log.Debug().Err(err).Msg("服务器消息解析失败")
		return nil
	}

	switch msg.Type {
	case protocol.MsgRoomCreated:
		return m.handleMsgRoomCreated(msg)

	case protocol.MsgJoined:
		m.phase = PhaseWaiting
		m.notice = ""
		m.input.Blur()

	case protocol.MsgGameStarted:
		m.phase = PhasePlaying
		m.cursor = 0
		if m.state.IsMyTurn() {
			m.sound.Play(sound.Turn)
		}

	case protocol.MsgDiceRolled:
		m.sound.Play(sound.Roll)

	case protocol.MsgScorecardsUpdated:
		// 没有可选项表示刚记录了计分项
		if len(m.state.Possible) == 0 {
			m.sound.Play(sound.Score)
		}

	case protocol.MsgTurnEnded:
		if m.state.IsMyTurn() {
			m.sound.Play(sound.Turn)
		}

	case protocol.MsgGameOver:
		m.phase = PhaseGameOver
		if m.state.Result.WinnerID == m.state.PlayerID {
			m.sound.Play(sound.Win)
		}

	case protocol.MsgLeaderboardResult:
		m.phase = PhaseLeaderboard

	case protocol.MsgError:
		m.sound.Play(sound.Bell)
		m.notice = ""
		return m.showError(m.state.LastError.Message)
	}
	return nil
}

// handleMsgRoomCreated 创建者随后以自己的昵称加入
func (m *OnlineModel) handleMsgRoomCreated(msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg)
	if err != nil {
		return nil
	}
	m.notice = "🏠 房间 " + payload.Code + " 已创建，正在加入..."
	return m.send(m.client.JoinRoom(payload.Code, m.state.PlayerName))
}
