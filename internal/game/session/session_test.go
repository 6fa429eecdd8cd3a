package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/yahtzee/internal/apperrors"
	"github.com/palemoky/yahtzee/internal/game/dice"
	"github.com/palemoky/yahtzee/internal/game/rule"
)

type rollerFunc func(n int) int

func (f rollerFunc) IntN(n int) int { return f(n) }

// constRoller always rolls the same face
func constRoller(face int) dice.Roller {
	return rollerFunc(func(int) int { return face - 1 })
}

// alternatingRoller rolls all-a on even rolls and all-b on odd rolls
func alternatingRoller(a, b int) dice.Roller {
	calls := 0
	return rollerFunc(func(int) int {
		roll := calls / dice.Count
		calls++
		if roll%2 == 0 {
			return a - 1
		}
		return b - 1
	})
}

func newTestSession(t *testing.T, roller dice.Roller, names ...string) *Session {
	t.Helper()

	opts := DefaultOptions()
	opts.Roller = roller
	ids := 0
	opts.NewID = func() string {
		ids++
		return fmt.Sprintf("p%d", ids)
	}

	s := New(opts)
	for i, name := range names {
		_, err := s.Join(fmt.Sprintf("c%d", i+1), name)
		require.NoError(t, err)
	}
	return s
}

func startedSession(t *testing.T, roller dice.Roller, names ...string) *Session {
	t.Helper()

	s := newTestSession(t, roller, names...)
	require.NoError(t, s.Start("c1"))
	return s
}

// playOut fills categories in order for whoever holds the turn until the game ends
func playOut(t *testing.T, s *Session) *Outcome {
	t.Helper()

	if !s.Turn().Rolled() {
		_, err := s.Roll(s.players[s.turnIndex].ConnID)
		require.NoError(t, err)
	}
	for s.Phase() == PhasePlaying {
		current, _ := s.CurrentPlayer()
		c := firstUnset(t, s, current.ID)
		res, err := s.SelectScore(current.ConnID, c)
		require.NoError(t, err)
		if res.GameOver != nil {
			return res.GameOver
		}
	}
	return nil
}

func firstUnset(t *testing.T, s *Session, playerID string) rule.Category {
	t.Helper()

	snap, ok := s.Scorecard(playerID)
	require.True(t, ok)
	for _, c := range rule.Categories {
		if _, set := snap.Scores[c]; !set {
			return c
		}
	}
	t.Fatalf("player %s has no unset category", playerID)
	return ""
}

func TestJoin_FirstPlayerIsHost(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, constRoller(1), "Alice", "Bob")

	assert.Equal(t, "p1", s.HostID())
	assert.True(t, s.IsHost("c1"))
	assert.False(t, s.IsHost("c2"))
	assert.Equal(t, []string{"Alice", "Bob"}, s.Names())
	assert.Equal(t, PhaseWaiting, s.Phase())
}

func TestJoin_Rejections(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.MaxPlayers = 2
	s := New(opts)

	_, err := s.Join("c1", "   ")
	require.ErrorIs(t, err, apperrors.ErrInvalidName)

	_, err = s.Join("c1", "Alice")
	require.NoError(t, err)
	_, err = s.Join("c2", "Bob")
	require.NoError(t, err)

	_, err = s.Join("c3", "Carol")
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))

	// 同一连接重复加入返回原玩家
	p, err := s.Join("c1", "Other")
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, 2, s.PlayerCount())

	require.NoError(t, s.Start("c1"))
	_, err = s.Join("c4", "Dave")
	assert.ErrorIs(t, err, apperrors.ErrGameStarted)
}

func TestJoin_DuplicateName(t *testing.T) {
	t.Parallel()

	s := New(DefaultOptions())
	_, err := s.Join("c1", "Ann")
	require.NoError(t, err)

	_, err = s.Join("c2", "  Ann")
	assert.ErrorIs(t, err, apperrors.ErrNameTaken)
	assert.Equal(t, []string{"Ann"}, s.Names())

	// 区分大小写
	_, err = s.Join("c3", "ann")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann", "ann"}, s.Names())
}

func TestStart_NonHostUnauthorized(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, constRoller(1), "Alice", "Bob")

	err := s.Start("c2")
	require.ErrorIs(t, err, apperrors.ErrNotHost)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
	assert.Equal(t, PhaseWaiting, s.Phase())

	assert.ErrorIs(t, s.Start("stranger"), apperrors.ErrNotInRoom)
	assert.Equal(t, PhaseWaiting, s.Phase())
}

func TestStart_InitializesGame(t *testing.T) {
	t.Parallel()

	s := startedSession(t, constRoller(1), "Alice", "Bob", "Carol")

	assert.Equal(t, PhasePlaying, s.Phase())
	assert.Equal(t, 0, s.TurnIndex())
	assert.Equal(t, 39, s.RoundsRemaining())
	assert.Equal(t, dice.MaxRolls, s.Turn().RollsLeft)
	assert.False(t, s.Turn().Rolled(), "start must not roll")
	for _, p := range s.Players() {
		snap, ok := s.Scorecard(p.ID)
		require.True(t, ok)
		assert.Empty(t, snap.Scores)
	}

	assert.ErrorIs(t, s.Start("c1"), apperrors.ErrGameStarted)
}

func TestStart_NotEnoughPlayers(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.MinPlayers = 2
	s := New(opts)
	_, err := s.Join("c1", "Alice")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Start("c1"), apperrors.ErrNotEnoughPlayers)
	assert.Equal(t, PhaseWaiting, s.Phase())
}

func TestRoll_PhaseChecks(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, constRoller(1), "Alice")
	_, err := s.Roll("c1")
	assert.ErrorIs(t, err, apperrors.ErrGameNotStart)

	_, err = s.Roll("stranger")
	assert.ErrorIs(t, err, apperrors.ErrNotInRoom)
}

func TestRoll_ReturnsPossibleScores(t *testing.T) {
	t.Parallel()

	s := startedSession(t, constRoller(4), "Alice")

	res, err := s.Roll("c1")
	require.NoError(t, err)
	assert.Equal(t, dice.Hand{4, 4, 4, 4, 4}, res.Dice)
	assert.Equal(t, 2, res.RollsLeft)
	assert.Equal(t, "Alice", res.Player.Name)
	assert.Equal(t, 20, res.Possible[rule.Fours])
	assert.Equal(t, 50, res.Possible[rule.Yahtzee])
	assert.Equal(t, 0, res.Possible[rule.FullHouse])
	assert.Equal(t, res.Possible, s.PossibleScores())
}

func TestRoll_ExhaustedLeavesDiceUnchanged(t *testing.T) {
	t.Parallel()

	s := startedSession(t, alternatingRoller(2, 5), "Alice")

	for range dice.MaxRolls {
		_, err := s.Roll("c1")
		require.NoError(t, err)
	}
	before := s.Turn().Dice

	_, err := s.Roll("c1")
	require.ErrorIs(t, err, apperrors.ErrNoRollsLeft)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	assert.Equal(t, before, s.Turn().Dice)
	assert.Equal(t, 0, s.Turn().RollsLeft)
}

func TestRoll_StrictTurns(t *testing.T) {
	t.Parallel()

	s := startedSession(t, constRoller(1), "Alice", "Bob")

	_, err := s.Roll("c2")
	require.ErrorIs(t, err, apperrors.ErrNotYourTurn)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
	assert.Equal(t, dice.MaxRolls, s.Turn().RollsLeft)
}

func TestRoll_PermissiveTurns(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.StrictTurns = false
	opts.Roller = constRoller(3)
	s := New(opts)
	_, _ = s.Join("c1", "Alice")
	_, _ = s.Join("c2", "Bob")
	require.NoError(t, s.Start("c1"))

	// 任何成员都可以为当前回合掷骰和保留
	res, err := s.Roll("c2")
	require.NoError(t, err)
	assert.Equal(t, "Alice", res.Player.Name)

	_, err = s.ToggleHold("c2", 0, 3)
	require.NoError(t, err)

	// 选择计分项仍然只能由当前回合玩家执行
	_, err = s.SelectScore("c2", rule.Chance)
	assert.ErrorIs(t, err, apperrors.ErrNotYourTurn)
}

func TestToggleHold(t *testing.T) {
	t.Parallel()

	s := startedSession(t, constRoller(3), "Alice")

	_, err := s.ToggleHold("c1", 0, 3)
	require.ErrorIs(t, err, apperrors.ErrMustRollFirst)

	_, err = s.Roll("c1")
	require.NoError(t, err)

	res, err := s.ToggleHold("c1", 2, 3)
	require.NoError(t, err)
	assert.True(t, res.Held)
	assert.Equal(t, [dice.Count]bool{false, false, true, false, false}, res.Mask)

	res, err = s.ToggleHold("c1", 2, 3)
	require.NoError(t, err)
	assert.False(t, res.Held)

	_, err = s.ToggleHold("c1", 5, 3)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDiceIndex)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidArgument))

	// 不能冻结为服务器骰子以外的点数
	_, err = s.ToggleHold("c1", 1, 6)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDiceValue)
	assert.Equal(t, [dice.Count]bool{}, s.Turn().Held)
}

func TestSelectScore_Validation(t *testing.T) {
	t.Parallel()

	s := startedSession(t, constRoller(2), "Alice", "Bob")

	_, err := s.SelectScore("c1", rule.Chance)
	require.ErrorIs(t, err, apperrors.ErrMustRollFirst)

	_, err = s.Roll("c1")
	require.NoError(t, err)

	_, err = s.SelectScore("c2", rule.Chance)
	require.ErrorIs(t, err, apperrors.ErrNotYourTurn)

	_, err = s.SelectScore("c1", rule.Category("bonus"))
	require.ErrorIs(t, err, apperrors.ErrInvalidCategory)

	assert.Equal(t, 26, s.RoundsRemaining())
}

func TestSelectScore_CommitsAndAdvances(t *testing.T) {
	t.Parallel()

	s := startedSession(t, constRoller(2), "Alice", "Bob")
	_, err := s.Roll("c1")
	require.NoError(t, err)

	res, err := s.SelectScore("c1", rule.Twos)
	require.NoError(t, err)

	assert.Equal(t, "Alice", res.Player.Name)
	assert.Equal(t, 10, res.Value)
	assert.Equal(t, map[rule.Category]int{rule.Twos: 10}, res.Scorecard.Scores)
	assert.Nil(t, res.GameOver)
	assert.Equal(t, 25, s.RoundsRemaining())

	// 下一位玩家自动掷骰
	assert.Equal(t, "Bob", res.Next.Name)
	require.NotNil(t, res.NextRoll)
	assert.Equal(t, 2, res.NextRoll.RollsLeft)
	assert.Equal(t, dice.Hand{2, 2, 2, 2, 2}, res.NextRoll.Dice)
	assert.Equal(t, 1, s.TurnIndex())
}

func TestSelectScore_WriteOnce(t *testing.T) {
	t.Parallel()

	s := startedSession(t, constRoller(5), "Solo")
	_, err := s.Roll("c1")
	require.NoError(t, err)

	_, err = s.SelectScore("c1", rule.Chance)
	require.NoError(t, err)
	rounds := s.RoundsRemaining()

	_, err = s.SelectScore("c1", rule.Chance)
	require.ErrorIs(t, err, apperrors.ErrCategoryUsed)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	assert.Equal(t, rounds, s.RoundsRemaining())

	// 已记录项在可得分中显示记录值
	assert.Equal(t, 25, s.PossibleScores()[rule.Chance])
}

func TestTurnCycle(t *testing.T) {
	t.Parallel()

	s := startedSession(t, constRoller(1), "A", "B", "C")
	_, err := s.Roll("c1")
	require.NoError(t, err)

	seen := map[string]int{}
	for range 3 {
		current, ok := s.CurrentPlayer()
		require.True(t, ok)
		seen[current.ID]++
		_, err := s.SelectScore(current.ConnID, firstUnset(t, s, current.ID))
		require.NoError(t, err)
	}

	assert.Equal(t, map[string]int{"p1": 1, "p2": 1, "p3": 1}, seen)
	assert.Equal(t, 0, s.TurnIndex())
}

func TestFullGame_RoundsReachZero(t *testing.T) {
	t.Parallel()

	s := startedSession(t, alternatingRoller(1, 6), "Alice", "Bob")

	selections := 0
	_, err := s.Roll("c1")
	require.NoError(t, err)
	var outcome *Outcome
	for s.Phase() == PhasePlaying {
		current, _ := s.CurrentPlayer()
		res, err := s.SelectScore(current.ConnID, firstUnset(t, s, current.ID))
		require.NoError(t, err)
		selections++
		outcome = res.GameOver
	}

	assert.Equal(t, 26, selections)
	assert.Equal(t, 0, s.RoundsRemaining())
	assert.Equal(t, PhaseGameOver, s.Phase())
	require.NotNil(t, outcome)
	assert.Same(t, outcome, s.Outcome())

	// Alice 全是 1 点，Bob 全是 6 点
	assert.Equal(t, "Bob", outcome.Winner.Player.Name)
	assert.Equal(t, 170, outcome.Winner.Total)
	require.Len(t, outcome.Standings, 2)
	assert.Equal(t, 70, outcome.Standings[0].Total)

	_, err = s.Roll("c1")
	assert.ErrorIs(t, err, apperrors.ErrGameOver)
}

func TestFullGame_TieGoesToEarliestSeat(t *testing.T) {
	t.Parallel()

	s := startedSession(t, constRoller(3), "Alice", "Bob", "Carol")
	outcome := playOut(t, s)

	require.NotNil(t, outcome)
	for _, st := range outcome.Standings {
		assert.Equal(t, outcome.Standings[0].Total, st.Total)
	}
	assert.Equal(t, "Alice", outcome.Winner.Player.Name)
}

func TestRemove_HostHandoffWhileWaiting(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, constRoller(1), "Alice", "Bob", "Carol")

	res, ok := s.Remove("c1")
	require.True(t, ok)
	require.NotNil(t, res.NewHost)
	assert.Equal(t, "Bob", res.NewHost.Name)
	assert.Equal(t, "p2", s.HostID())
	assert.Equal(t, []string{"Bob", "Carol"}, s.Names())

	_, ok = s.Remove("c1")
	assert.False(t, ok)

	res, ok = s.Remove("c3")
	require.True(t, ok)
	assert.Nil(t, res.NewHost)
	res, ok = s.Remove("c2")
	require.True(t, ok)
	assert.True(t, res.Empty)
	assert.Empty(t, s.HostID())
}

func TestRemove_CurrentPlayerPassesTurn(t *testing.T) {
	t.Parallel()

	s := startedSession(t, constRoller(2), "Alice", "Bob", "Carol")
	_, err := s.Roll("c1")
	require.NoError(t, err)

	res, ok := s.Remove("c1")
	require.True(t, ok)

	assert.True(t, res.TurnPassed)
	assert.Equal(t, "Bob", res.Next.Name)
	require.NotNil(t, res.NextRoll)
	assert.Equal(t, 2, res.NextRoll.RollsLeft)
	assert.Equal(t, 0, s.TurnIndex())
	assert.Equal(t, 26, s.RoundsRemaining())
	assert.Equal(t, "p2", s.HostID())
}

func TestRemove_EarlierSeatKeepsCurrentPlayer(t *testing.T) {
	t.Parallel()

	s := startedSession(t, constRoller(2), "Alice", "Bob", "Carol")
	_, err := s.Roll("c1")
	require.NoError(t, err)
	_, err = s.SelectScore("c1", rule.Chance)
	require.NoError(t, err)
	require.Equal(t, 1, s.TurnIndex())

	res, ok := s.Remove("c1")
	require.True(t, ok)
	assert.False(t, res.TurnPassed)

	current, ok := s.CurrentPlayer()
	require.True(t, ok)
	assert.Equal(t, "Bob", current.Name)
	assert.Equal(t, 0, s.TurnIndex())
	// Alice 还有 12 项未记录
	assert.Equal(t, 38-12, s.RoundsRemaining())
	assert.Equal(t, 2, s.Turn().RollsLeft, "current turn is untouched")
}

func TestRemove_LaterSeat(t *testing.T) {
	t.Parallel()

	s := startedSession(t, constRoller(2), "Alice", "Bob", "Carol")

	res, ok := s.Remove("c3")
	require.True(t, ok)
	assert.False(t, res.TurnPassed)
	assert.Equal(t, 0, s.TurnIndex())
	assert.Equal(t, 26, s.RoundsRemaining())
}

func TestRemove_EndsGameWhenNothingLeft(t *testing.T) {
	t.Parallel()

	s := startedSession(t, constRoller(4), "Alice", "Bob")
	_, err := s.Roll("c1")
	require.NoError(t, err)

	// Alice 填满 13 项，Bob 填 12 项，轮到 Bob
	for s.RoundsRemaining() > 1 {
		current, _ := s.CurrentPlayer()
		_, err := s.SelectScore(current.ConnID, firstUnset(t, s, current.ID))
		require.NoError(t, err)
	}
	current, _ := s.CurrentPlayer()
	require.Equal(t, "Bob", current.Name)

	res, ok := s.Remove("c2")
	require.True(t, ok)
	require.NotNil(t, res.GameOver)
	assert.Equal(t, "Alice", res.GameOver.Winner.Player.Name)
	assert.Equal(t, PhaseGameOver, s.Phase())
	assert.Equal(t, 0, s.RoundsRemaining())
}

func TestRemove_LastPlayerMidGame(t *testing.T) {
	t.Parallel()

	s := startedSession(t, constRoller(4), "Solo")

	res, ok := s.Remove("c1")
	require.True(t, ok)
	assert.True(t, res.Empty)
	assert.Nil(t, res.GameOver)
	assert.Equal(t, PhaseGameOver, s.Phase())
	_, ok = s.CurrentPlayer()
	assert.False(t, ok)
}

func TestPhase_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "waiting", PhaseWaiting.String())
	assert.Equal(t, "playing", PhasePlaying.String())
	assert.Equal(t, "game_over", PhaseGameOver.String())
}
