package ui

import (
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/yahtzee/internal/game/rule"
)

const (
	maxNameLength  = 20
	roomCodeLength = 6

	boardTotal       = "total"
	boardDaily       = "daily"
	leaderboardLimit = 10
)

// handleKeyPress 按阶段处理按键
func (m *OnlineModel) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	if msg.Type == tea.KeyEsc {
		return m.handleEsc()
	}

	switch m.phase {
	case PhaseName:
		return m.handleNameInput(msg)
	case PhaseLobby:
		return m.handleLobbyInput(msg)
	case PhaseWaiting:
		return m.handleWaitingInput(msg)
	case PhasePlaying:
		return m.handlePlayingInput(msg)
	case PhaseGameOver:
		if msg.Type == tea.KeyEnter {
			return m.backToLobby()
		}
	case PhaseLeaderboard:
		return m.handleLeaderboardInput(msg)
	}
	return nil
}

func (m *OnlineModel) handleEsc() tea.Cmd {
	switch m.phase {
	case PhaseWaiting, PhasePlaying, PhaseGameOver:
		return m.backToLobby()
	case PhaseLeaderboard:
		m.phase = PhaseLobby
		m.input.Focus()
		return nil
	default:
		return m.quit()
	}
}

func (m *OnlineModel) quit() tea.Cmd {
	m.client.Close()
	return tea.Quit
}

// backToLobby 离开房间返回大厅
func (m *OnlineModel) backToLobby() tea.Cmd {
	var cmd tea.Cmd
	if m.state.RoomCode != "" {
		cmd = m.send(m.client.LeaveRoom(m.state.RoomCode))
	}
	m.state.LeaveRoom()
	m.enterLobby()
	return tea.Batch(cmd, m.send(m.client.GetRoomList()))
}

func (m *OnlineModel) enterLobby() {
	m.phase = PhaseLobby
	m.notice = ""
	m.input.Reset()
	m.input.Placeholder = "输入选项 (1-4) 或房间号"
	m.input.CharLimit = roomCodeLength
	m.input.Focus()
}

func (m *OnlineModel) handleNameInput(msg tea.KeyMsg) tea.Cmd {
	if msg.Type != tea.KeyEnter {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}

	name := strings.TrimSpace(m.input.Value())
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return m.showError("昵称不能为空且不超过 20 个字符")
	}
	m.state.PlayerName = name
	m.enterLobby()
	return m.send(m.client.GetRoomList())
}

func (m *OnlineModel) handleLobbyInput(msg tea.KeyMsg) tea.Cmd {
	if msg.Type != tea.KeyEnter {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}

	value := strings.ToUpper(strings.TrimSpace(m.input.Value()))
	m.input.Reset()

	switch value {
	case "1":
		return m.send(m.client.CreateRoom())
	case "2":
		return m.send(m.client.GetRoomList())
	case "3":
		return m.send(m.client.GetLeaderboard(boardTotal, leaderboardLimit))
	case "4":
		return m.send(m.client.GetLeaderboard(boardDaily, leaderboardLimit))
	}

	if len(value) == roomCodeLength {
		m.notice = "🚪 正在加入房间 " + value + "..."
		return m.send(m.client.JoinRoom(value, m.state.PlayerName))
	}
	return m.showError("无效的选项或房间号")
}

func (m *OnlineModel) handleWaitingInput(msg tea.KeyMsg) tea.Cmd {
	if msg.String() != "s" {
		return nil
	}
	if !m.state.IsHost {
		return m.showError("只有房主可以开始游戏")
	}
	return m.send(m.client.StartGame(m.state.RoomCode))
}

func (m *OnlineModel) handlePlayingInput(msg tea.KeyMsg) tea.Cmd {
	code := m.state.RoomCode

	switch key := msg.String(); key {
	case "r", " ":
		return m.send(m.client.RollDice(code))

	case "1", "2", "3", "4", "5":
		index := int(key[0] - '1')
		if !m.state.HasRolled() || index >= len(m.state.Dice) {
			return m.showError("请先掷骰子")
		}
		return m.send(m.client.ToggleHold(code, index, m.state.Dice[index]))

	case "up", "k":
		m.cursor = (m.cursor - 1 + len(rule.Categories)) % len(rule.Categories)
	case "down", "j":
		m.cursor = (m.cursor + 1) % len(rule.Categories)

	case "enter":
		category := string(rule.Categories[m.cursor])
		if m.state.Recorded(category) {
			return m.showError("该计分项已记录")
		}
		return m.send(m.client.SelectScore(code, category))
	}
	return nil
}

func (m *OnlineModel) handleLeaderboardInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "t":
		return m.send(m.client.GetLeaderboard(boardTotal, leaderboardLimit))
	case "d":
		return m.send(m.client.GetLeaderboard(boardDaily, leaderboardLimit))
	}
	return nil
}
