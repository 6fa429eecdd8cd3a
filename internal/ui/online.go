// Package ui 终端客户端界面
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/yahtzee/internal/protocol"
)

// GamePhase 界面阶段
type GamePhase int

const (
	PhaseConnecting GamePhase = iota
	PhaseName
	PhaseLobby
	PhaseWaiting
	PhasePlaying
	PhaseGameOver
	PhaseLeaderboard
)

const (
	connectTimeout = 10 * time.Second
	errorDisplay   = 3 * time.Second
)

// GameClient 界面依赖的服务器连接
type GameClient interface {
	Connect(ctx context.Context) error
	StartHeartbeat()
	Messages() <-chan *protocol.Message
	Done() <-chan struct{}
	Close()

	CreateRoom() error
	JoinRoom(code, name string) error
	LeaveRoom(code string) error
	StartGame(code string) error
	RollDice(code string) error
	ToggleHold(code string, index, value int) error
	SelectScore(code, category string) error
	GetRoomList() error
	GetLeaderboard(board string, limit int) error
}

// SoundPlayer 按名称播放音效
type SoundPlayer interface {
	Play(name string)
}

// ServerMessage 服务器消息（用于 tea.Msg）
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg 连接成功
type ConnectedMsg struct{}

// ConnectionErrorMsg 连接失败
type ConnectionErrorMsg struct {
	Err error
}

// DisconnectedMsg 连接已断开
type DisconnectedMsg struct{}

// ClearErrorMsg 清除错误提示
type ClearErrorMsg struct{}

// OnlineModel 联网模式的 model
type OnlineModel struct {
	client GameClient
	sound  SoundPlayer

	phase  GamePhase
	state  *GameState
	error  string
	notice string

	cursor int // 记分卡光标，对应 rule.Categories 下标

	input  textinput.Model
	width  int
	height int
}

// NewOnlineModel 创建联网模式 model，sound 可为 nil
func NewOnlineModel(c GameClient, sound SoundPlayer) *OnlineModel {
	ti := textinput.New()
	ti.Placeholder = "输入昵称..."
	ti.CharLimit = maxNameLength
	ti.Width = 24
	ti.Focus()

	if sound == nil {
		sound = silent{}
	}
	return &OnlineModel{
		client: c,
		sound:  sound,
		phase:  PhaseConnecting,
		state:  NewGameState(),
		input:  ti,
	}
}

// Phase 当前阶段
func (m *OnlineModel) Phase() GamePhase { return m.phase }

// State 客户端状态
func (m *OnlineModel) State() *GameState { return m.state }

func (m *OnlineModel) Init() tea.Cmd {
	return tea.Batch(m.connectToServer(), textinput.Blink)
}

// connectToServer 连接服务器
func (m *OnlineModel) connectToServer() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := m.client.Connect(ctx); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

// listenForMessages 等待下一条服务器消息
func (m *OnlineModel) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.client.Messages():
			return ServerMessage{Msg: msg}
		case <-m.client.Done():
			return DisconnectedMsg{}
		}
	}
}

func (m *OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKeyPress(msg)

	case ConnectedMsg:
		m.phase = PhaseName
		m.error = ""
		m.client.StartHeartbeat()
		return m, m.listenForMessages()

	case ConnectionErrorMsg:
		m.phase = PhaseConnecting
		m.error = "无法连接到服务器: " + msg.Err.Error() + "\n\n按 ESC 退出"
		return m, nil

	case DisconnectedMsg:
		m.phase = PhaseConnecting
		m.error = "与服务器的连接已断开\n\n按 ESC 退出"
		return m, nil

	case ServerMessage:
		return m, tea.Batch(m.handleServerMessage(msg.Msg), m.listenForMessages())

	case ClearErrorMsg:
		m.error = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *OnlineModel) View() string {
	switch m.phase {
	case PhaseConnecting:
		return m.connectingView()
	case PhaseName:
		return m.nameView()
	case PhaseLobby:
		return m.lobbyView()
	case PhaseWaiting:
		return m.waitingView()
	case PhasePlaying:
		return m.playingView()
	case PhaseGameOver:
		return m.gameOverView()
	case PhaseLeaderboard:
		return m.leaderboardView()
	}
	return ""
}

// showError 显示错误并在稍后清除
func (m *OnlineModel) showError(text string) tea.Cmd {
	m.error = text
	return tea.Tick(errorDisplay, func(time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}

// send 发送请求，失败时提示
func (m *OnlineModel) send(err error) tea.Cmd {
	if err != nil {
		return m.showError("发送失败: " + err.Error())
	}
	return nil
}

type silent struct{}

func (silent) Play(string) {}
