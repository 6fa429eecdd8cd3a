package session

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/palemoky/yahtzee/internal/apperrors"
	"github.com/palemoky/yahtzee/internal/game/dice"
	"github.com/palemoky/yahtzee/internal/game/rule"
	"github.com/palemoky/yahtzee/internal/game/scorecard"
)

const (
	DefaultMaxPlayers = 8
	DefaultMinPlayers = 1
	MaxNameLength     = 20
)

// Options 会话配置
type Options struct {
	MaxPlayers  int
	MinPlayers  int
	StrictTurns bool // 只有当前回合玩家可以掷骰和保留
	Roller      dice.Roller
	NewID       func() string
}

// DefaultOptions 默认配置
func DefaultOptions() Options {
	return Options{
		MaxPlayers:  DefaultMaxPlayers,
		MinPlayers:  DefaultMinPlayers,
		StrictTurns: true,
		Roller:      dice.NewRandomRoller(),
		NewID:       uuid.NewString,
	}
}

// Session 一个房间的游戏状态机
//
// Session 不做并发保护，由所属房间串行调用。
type Session struct {
	opts Options

	players    []Player
	hostID     string
	phase      Phase
	turnIndex  int
	scorecards map[string]*scorecard.Scorecard
	turn       *dice.Turn

	roundsRemaining int
	outcome         *Outcome
}

// New 创建等待中的会话
func New(opts Options) *Session {
	def := DefaultOptions()
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = def.MaxPlayers
	}
	if opts.MinPlayers <= 0 {
		opts.MinPlayers = def.MinPlayers
	}
	if opts.Roller == nil {
		opts.Roller = def.Roller
	}
	if opts.NewID == nil {
		opts.NewID = def.NewID
	}

	return &Session{
		opts:       opts,
		phase:      PhaseWaiting,
		scorecards: make(map[string]*scorecard.Scorecard),
		turn:       dice.NewTurn(),
	}
}

// Join 玩家加入，第一个加入的玩家成为房主
func (s *Session) Join(connID, name string) (Player, error) {
	if p, ok := s.PlayerByConn(connID); ok {
		return p, nil
	}
	if s.phase != PhaseWaiting {
		return Player{}, apperrors.ErrGameStarted
	}

	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return Player{}, apperrors.ErrInvalidName
	}
	if len(s.players) >= s.opts.MaxPlayers {
		return Player{}, apperrors.ErrRoomFull
	}
	for _, other := range s.players {
		if other.Name == name {
			return Player{}, apperrors.ErrNameTaken
		}
	}

	p := Player{ID: s.opts.NewID(), Name: name, ConnID: connID}
	s.players = append(s.players, p)
	if s.hostID == "" {
		s.hostID = p.ID
	}
	return p, nil
}

// Start 房主开始游戏
func (s *Session) Start(connID string) error {
	p, ok := s.PlayerByConn(connID)
	if !ok {
		return apperrors.ErrNotInRoom
	}
	if p.ID != s.hostID {
		return apperrors.ErrNotHost
	}
	if s.phase != PhaseWaiting {
		return apperrors.ErrGameStarted
	}
	if len(s.players) < s.opts.MinPlayers {
		return apperrors.ErrNotEnoughPlayers
	}

	s.phase = PhasePlaying
	s.turnIndex = 0
	s.roundsRemaining = len(rule.Categories) * len(s.players)
	s.scorecards = make(map[string]*scorecard.Scorecard, len(s.players))
	for _, pl := range s.players {
		s.scorecards[pl.ID] = scorecard.New()
	}
	s.turn.Reset()
	return nil
}

// Roll 为当前回合掷骰
func (s *Session) Roll(connID string) (RollResult, error) {
	if _, err := s.actor(connID, s.opts.StrictTurns); err != nil {
		return RollResult{}, err
	}
	if _, err := s.turn.Roll(s.opts.Roller); err != nil {
		return RollResult{}, err
	}
	return s.rollResult(), nil
}

// ToggleHold 切换当前回合某颗骰子的保留状态
//
// 变为保留时 value 必须与服务器上的骰子点数一致。
func (s *Session) ToggleHold(connID string, index, value int) (HoldResult, error) {
	actor, err := s.actor(connID, s.opts.StrictTurns)
	if err != nil {
		return HoldResult{}, err
	}
	if !dice.ValidIndex(index) {
		return HoldResult{}, apperrors.ErrInvalidDiceIndex
	}
	if !s.turn.Rolled() {
		return HoldResult{}, apperrors.ErrMustRollFirst
	}
	if !s.turn.Held[index] && value != s.turn.Dice[index] {
		return HoldResult{}, apperrors.ErrInvalidDiceValue
	}

	held, err := s.turn.ToggleHold(index, value)
	if err != nil {
		return HoldResult{}, err
	}
	return HoldResult{
		Player: actor,
		Index:  index,
		Held:   held,
		Dice:   s.turn.Dice,
		Mask:   s.turn.Held,
	}, nil
}

// SelectScore 当前回合玩家记录计分项并结束回合
func (s *Session) SelectScore(connID string, c rule.Category) (SelectResult, error) {
	actor, err := s.actor(connID, true)
	if err != nil {
		return SelectResult{}, err
	}
	if !c.Valid() {
		return SelectResult{}, apperrors.ErrInvalidCategory
	}
	if !s.turn.Rolled() {
		return SelectResult{}, apperrors.ErrMustRollFirst
	}

	card := s.scorecards[actor.ID]
	value := rule.ScoreCategory(s.turn.Dice, c)
	if err := card.Record(c, value); err != nil {
		return SelectResult{}, err
	}
	s.roundsRemaining--

	res := SelectResult{
		Player:    actor,
		Category:  c,
		Value:     value,
		Scorecard: card.Snapshot(),
	}

	if s.roundsRemaining <= 0 {
		res.GameOver = s.finish()
		return res, nil
	}

	s.turnIndex = (s.turnIndex + 1) % len(s.players)
	res.Next, res.NextRoll = s.beginTurn()
	return res, nil
}

// Remove 移除玩家（离开或断线），返回 false 表示不在会话中
func (s *Session) Remove(connID string) (RemoveResult, bool) {
	idx := s.indexOfConn(connID)
	if idx < 0 {
		return RemoveResult{}, false
	}

	p := s.players[idx]
	s.players = append(s.players[:idx], s.players[idx+1:]...)
	res := RemoveResult{Player: p, Empty: len(s.players) == 0}

	if s.hostID == p.ID {
		s.hostID = ""
		if !res.Empty {
			next := s.players[idx%len(s.players)]
			s.hostID = next.ID
			res.NewHost = &next
		}
	}

	if s.phase != PhasePlaying {
		return res, true
	}

	if card, ok := s.scorecards[p.ID]; ok {
		s.roundsRemaining -= card.Remaining()
		delete(s.scorecards, p.ID)
	}

	if res.Empty {
		s.phase = PhaseGameOver
		s.roundsRemaining = 0
		s.turnIndex = 0
		return res, true
	}

	wasCurrent := idx == s.turnIndex
	if idx < s.turnIndex {
		s.turnIndex--
	}
	if s.turnIndex >= len(s.players) {
		s.turnIndex = 0
	}

	if s.roundsRemaining <= 0 {
		res.GameOver = s.finish()
		return res, true
	}
	if wasCurrent {
		res.TurnPassed = true
		res.Next, res.NextRoll = s.beginTurn()
	}
	return res, true
}

// actor 校验操作者是否可以在当前回合行动
func (s *Session) actor(connID string, mustOwnTurn bool) (Player, error) {
	p, ok := s.PlayerByConn(connID)
	if !ok {
		return Player{}, apperrors.ErrNotInRoom
	}
	switch s.phase {
	case PhaseWaiting:
		return Player{}, apperrors.ErrGameNotStart
	case PhaseGameOver:
		return Player{}, apperrors.ErrGameOver
	}
	if mustOwnTurn && s.players[s.turnIndex].ID != p.ID {
		return Player{}, apperrors.ErrNotYourTurn
	}
	return p, nil
}

// beginTurn 为当前座位开始新回合并自动掷骰
func (s *Session) beginTurn() (Player, *RollResult) {
	s.turn.Reset()
	_, _ = s.turn.Roll(s.opts.Roller)
	roll := s.rollResult()
	return roll.Player, &roll
}

func (s *Session) rollResult() RollResult {
	current := s.players[s.turnIndex]
	card := s.scorecards[current.ID]
	return RollResult{
		Player:    current,
		Dice:      s.turn.Dice,
		RollsLeft: s.turn.RollsLeft,
		Possible:  card.Overlay(rule.Score(s.turn.Dice)),
		Scorecard: card.Snapshot(),
	}
}

// finish 结束游戏并计算胜者：总分严格最高者，平分时座位靠前者胜
func (s *Session) finish() *Outcome {
	s.phase = PhaseGameOver
	s.roundsRemaining = 0
	s.turn.Reset()

	standings := s.Standings()
	out := &Outcome{Standings: standings}
	for i, st := range standings {
		if i == 0 || st.Total > out.Winner.Total {
			out.Winner = st
		}
	}
	s.outcome = out
	return out
}

func (s *Session) indexOfConn(connID string) int {
	for i, p := range s.players {
		if p.ConnID == connID {
			return i
		}
	}
	return -1
}
