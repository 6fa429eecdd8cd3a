package ui

import (
	"fmt"

	"github.com/palemoky/yahtzee/internal/game/dice"
	"github.com/palemoky/yahtzee/internal/protocol"
	"github.com/palemoky/yahtzee/internal/protocol/codec"
)

// GameState 客户端视角的房间与对局状态，只由服务器消息驱动
type GameState struct {
	// 本人
	ConnID     string
	PlayerID   string
	PlayerName string
	IsHost     bool

	// 房间
	RoomCode string
	Players  []string // 座位顺序
	Host     string

	// 当前回合
	CurrentID   string
	CurrentName string
	Dice        []int
	Held        []bool
	RollsLeft   int
	Possible    map[string]int // 当前回合玩家的可得分

	// 每位玩家的记分卡，按昵称索引
	Scorecards map[string]protocol.ScorecardInfo

	Result *protocol.GameOverPayload

	// 大厅
	Rooms           []protocol.RoomListItem
	LeaderboardType string
	Leaderboard     []protocol.LeaderboardEntry

	LastError *protocol.ErrorPayload
}

// NewGameState 创建空状态
func NewGameState() *GameState {
	gs := &GameState{}
	gs.resetTurn()
	gs.Scorecards = make(map[string]protocol.ScorecardInfo)
	return gs
}

// IsMyTurn 是否轮到本人
func (gs *GameState) IsMyTurn() bool {
	return gs.PlayerID != "" && gs.CurrentID == gs.PlayerID
}

// HasRolled 本回合是否已掷骰
func (gs *GameState) HasRolled() bool {
	return gs.RollsLeft < dice.MaxRolls
}

// Recorded 计分项是否已被当前回合玩家记录
func (gs *GameState) Recorded(category string) bool {
	card, ok := gs.Scorecards[gs.CurrentName]
	if !ok {
		return false
	}
	_, used := card.Scores[category]
	return used
}

// LeaveRoom 清空房间相关状态，保留本人和大厅数据
func (gs *GameState) LeaveRoom() {
	gs.RoomCode = ""
	gs.PlayerID = ""
	gs.IsHost = false
	gs.Players = nil
	gs.Host = ""
	gs.Result = nil
	gs.CurrentID = ""
	gs.CurrentName = ""
	gs.Scorecards = make(map[string]protocol.ScorecardInfo)
	gs.resetTurn()
}

func (gs *GameState) resetTurn() {
	gs.Dice = make([]int, dice.Count)
	gs.Held = make([]bool, dice.Count)
	gs.RollsLeft = dice.MaxRolls
	gs.Possible = map[string]int{}
}

// Apply 将一条服务器消息合并进状态
func (gs *GameState) Apply(msg *protocol.Message) error {
	switch msg.Type {
	case protocol.MsgConnected:
		return apply(msg, func(p *protocol.ConnectedPayload) {
			gs.ConnID = p.ConnID
		})

	case protocol.MsgJoined:
		return apply(msg, func(p *protocol.JoinedPayload) {
			gs.LeaveRoom()
			gs.RoomCode = p.Code
			gs.PlayerID = p.PlayerID
			gs.IsHost = p.IsHost
		})

	case protocol.MsgPlayerList:
		return apply(msg, func(p *protocol.PlayerListPayload) {
			gs.Players = p.Players
			gs.Host = p.Host
			gs.IsHost = gs.PlayerName != "" && p.Host == gs.PlayerName
		})

	case protocol.MsgGameStarted:
		return apply(msg, func(p *protocol.GameStartedPayload) {
			gs.Result = nil
			gs.Scorecards = make(map[string]protocol.ScorecardInfo)
			gs.CurrentID = p.CurrentTurnPlayerID
			gs.CurrentName = p.CurrentTurnName
			gs.resetTurn()
		})

	case protocol.MsgDiceRolled:
		return apply(msg, func(p *protocol.DiceRolledPayload) {
			gs.CurrentID = p.PlayerID
			gs.Dice = p.Dice
			gs.RollsLeft = p.RollsLeft
		})

	case protocol.MsgDiceHeld:
		return apply(msg, func(p *protocol.DiceHeldPayload) {
			gs.Held = p.Held
			gs.Dice = p.Dice
		})

	case protocol.MsgScorecardsUpdated:
		return apply(msg, func(p *protocol.ScorecardsUpdatedPayload) {
			gs.Scorecards[p.Name] = p.RealScorecard
			gs.Possible = p.PossibleScores
			if gs.Possible == nil {
				gs.Possible = map[string]int{}
			}
		})

	case protocol.MsgTurnEnded:
		return apply(msg, func(p *protocol.TurnEndedPayload) {
			gs.CurrentID = p.PlayerID
			gs.CurrentName = p.Name
			gs.resetTurn()
		})

	case protocol.MsgGameOver:
		return apply(msg, func(p *protocol.GameOverPayload) {
			gs.Result = p
			for _, st := range p.Standings {
				gs.Scorecards[st.Name] = st.Scorecard
			}
			gs.CurrentID = ""
			gs.CurrentName = ""
			gs.resetTurn()
		})

	case protocol.MsgRoomListResult:
		return apply(msg, func(p *protocol.RoomListResultPayload) {
			gs.Rooms = p.Rooms
		})

	case protocol.MsgLeaderboardResult:
		return apply(msg, func(p *protocol.LeaderboardResultPayload) {
			gs.LeaderboardType = p.Type
			gs.Leaderboard = p.Entries
		})

	case protocol.MsgError:
		return apply(msg, func(p *protocol.ErrorPayload) {
			gs.LastError = p
		})
	}
	return nil
}

func apply[T any](msg *protocol.Message, fn func(*T)) error {
	payload, err := codec.ParsePayload[T](msg)
	if err != nil {
		return fmt.Errorf("decode %s: %w", msg.Type, err)
	}
	fn(payload)
	return nil
}
