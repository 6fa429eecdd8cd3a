package convert

import (
	"github.com/palemoky/yahtzee/internal/game/rule"
	"github.com/palemoky/yahtzee/internal/game/scorecard"
	"github.com/palemoky/yahtzee/internal/game/session"
	"github.com/palemoky/yahtzee/internal/protocol"
)

// --- Score conversion ---

func Scores(scores map[rule.Category]int) map[string]int {
	result := make(map[string]int, len(scores))
	for c, v := range scores {
		result[string(c)] = v
	}
	return result
}

func Scorecard(s scorecard.Snapshot) protocol.ScorecardInfo {
	return protocol.ScorecardInfo{
		Scores:        Scores(s.Scores),
		UpperSubtotal: s.UpperSubtotal,
		Bonus:         s.Bonus,
		Total:         s.Total,
	}
}

// --- Turn conversion ---

func DiceRolled(r session.RollResult) protocol.DiceRolledPayload {
	return protocol.DiceRolledPayload{
		PlayerID:  r.Player.ID,
		Dice:      r.Dice.Slice(),
		RollsLeft: r.RollsLeft,
	}
}

func DiceHeld(h session.HoldResult) protocol.DiceHeldPayload {
	return protocol.DiceHeldPayload{
		PlayerID: h.Player.ID,
		Held:     h.Mask[:],
		Dice:     h.Dice.Slice(),
	}
}

func ScorecardsUpdated(r session.RollResult) protocol.ScorecardsUpdatedPayload {
	return protocol.ScorecardsUpdatedPayload{
		PossibleScores: Scores(r.Possible),
		RealScorecard:  Scorecard(r.Scorecard),
		PlayerID:       r.Player.ID,
		Name:           r.Player.Name,
	}
}

// ScoreCommitted 记录计分项后的记分卡（没有可选项）
func ScoreCommitted(r session.SelectResult) protocol.ScorecardsUpdatedPayload {
	return protocol.ScorecardsUpdatedPayload{
		PossibleScores: map[string]int{},
		RealScorecard:  Scorecard(r.Scorecard),
		PlayerID:       r.Player.ID,
		Name:           r.Player.Name,
	}
}

func TurnEnded(next session.Player) protocol.TurnEndedPayload {
	return protocol.TurnEndedPayload{PlayerID: next.ID, Name: next.Name}
}

// --- Outcome conversion ---

func Standing(s session.Standing) protocol.StandingInfo {
	return protocol.StandingInfo{
		PlayerID:  s.Player.ID,
		Name:      s.Player.Name,
		Total:     s.Total,
		Scorecard: Scorecard(s.Scorecard),
	}
}

func GameOver(o *session.Outcome) protocol.GameOverPayload {
	standings := make([]protocol.StandingInfo, len(o.Standings))
	for i, s := range o.Standings {
		standings[i] = Standing(s)
	}
	return protocol.GameOverPayload{
		WinnerID:    o.Winner.Player.ID,
		WinnerName:  o.Winner.Player.Name,
		WinnerScore: o.Winner.Total,
		Standings:   standings,
	}
}
