package session

import (
	"github.com/palemoky/yahtzee/internal/game/dice"
	"github.com/palemoky/yahtzee/internal/game/rule"
	"github.com/palemoky/yahtzee/internal/game/scorecard"
)

// Phase 当前阶段
func (s *Session) Phase() Phase { return s.phase }

// HostID 房主玩家 ID，房间为空时为空字符串
func (s *Session) HostID() string { return s.hostID }

// TurnIndex 当前回合玩家的座位下标
func (s *Session) TurnIndex() int { return s.turnIndex }

// RoundsRemaining 剩余回合数
func (s *Session) RoundsRemaining() int { return s.roundsRemaining }

// PlayerCount 玩家人数
func (s *Session) PlayerCount() int { return len(s.players) }

// Players 按座位顺序返回玩家副本
func (s *Session) Players() []Player {
	out := make([]Player, len(s.players))
	copy(out, s.players)
	return out
}

// Names 按座位顺序返回玩家昵称
func (s *Session) Names() []string {
	names := make([]string, len(s.players))
	for i, p := range s.players {
		names[i] = p.Name
	}
	return names
}

// PlayerByConn 通过连接查找玩家
func (s *Session) PlayerByConn(connID string) (Player, bool) {
	if i := s.indexOfConn(connID); i >= 0 {
		return s.players[i], true
	}
	return Player{}, false
}

// IsHost 连接是否属于房主
func (s *Session) IsHost(connID string) bool {
	p, ok := s.PlayerByConn(connID)
	return ok && p.ID == s.hostID
}

// CurrentPlayer 当前回合玩家，仅在游戏进行中有效
func (s *Session) CurrentPlayer() (Player, bool) {
	if s.phase != PhasePlaying || len(s.players) == 0 {
		return Player{}, false
	}
	return s.players[s.turnIndex], true
}

// Turn 当前回合的骰子状态副本
func (s *Session) Turn() dice.Turn { return *s.turn }

// PossibleScores 当前回合玩家的可得分（已记录项显示记录值）
func (s *Session) PossibleScores() map[rule.Category]int {
	current, ok := s.CurrentPlayer()
	if !ok || !s.turn.Rolled() {
		return nil
	}
	return s.scorecards[current.ID].Overlay(rule.Score(s.turn.Dice))
}

// Scorecard 某名玩家的记分卡快照
func (s *Session) Scorecard(playerID string) (scorecard.Snapshot, bool) {
	card, ok := s.scorecards[playerID]
	if !ok {
		return scorecard.Snapshot{}, false
	}
	return card.Snapshot(), true
}

// Standings 按座位顺序返回当前成绩
func (s *Session) Standings() []Standing {
	out := make([]Standing, 0, len(s.players))
	for _, p := range s.players {
		card, ok := s.scorecards[p.ID]
		if !ok {
			continue
		}
		out = append(out, Standing{Player: p, Total: card.Total(), Scorecard: card.Snapshot()})
	}
	return out
}

// Outcome 游戏结果，未结束时为 nil
func (s *Session) Outcome() *Outcome { return s.outcome }
