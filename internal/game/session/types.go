package session

import (
	"github.com/palemoky/yahtzee/internal/game/dice"
	"github.com/palemoky/yahtzee/internal/game/rule"
	"github.com/palemoky/yahtzee/internal/game/scorecard"
)

// Phase 会话阶段
type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePlaying
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhasePlaying:
		return "playing"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Player 会话中的玩家，顺序即座位顺序
type Player struct {
	ID     string
	Name   string
	ConnID string // 仅用于消息路由和识别操作者
}

// Standing 玩家最终成绩
type Standing struct {
	Player    Player
	Total     int
	Scorecard scorecard.Snapshot
}

// Outcome 游戏结果
type Outcome struct {
	Winner    Standing
	Standings []Standing // 按座位顺序
}

// RollResult 一次掷骰的结果
type RollResult struct {
	Player    Player // 当前回合玩家
	Dice      dice.Hand
	RollsLeft int
	Possible  map[rule.Category]int // 已记录的计分项显示为记录值
	Scorecard scorecard.Snapshot
}

// HoldResult 一次保留切换的结果
type HoldResult struct {
	Player Player
	Index  int
	Held   bool
	Dice   dice.Hand
	Mask   [dice.Count]bool
}

// SelectResult 一次选择计分项的结果
type SelectResult struct {
	Player    Player
	Category  rule.Category
	Value     int
	Scorecard scorecard.Snapshot

	// 游戏继续时为下一位玩家及其自动掷骰结果
	Next     Player
	NextRoll *RollResult

	// 游戏结束时非空
	GameOver *Outcome
}

// RemoveResult 玩家离开的结果
type RemoveResult struct {
	Player  Player
	NewHost *Player // 房主移交给的玩家
	Empty   bool

	// 当前回合玩家离开后轮到的玩家
	TurnPassed bool
	Next       Player
	NextRoll   *RollResult

	GameOver *Outcome
}
