package scorecard

import (
	"github.com/palemoky/yahtzee/internal/apperrors"
	"github.com/palemoky/yahtzee/internal/game/rule"
)

const (
	BonusThreshold = 63 // 上半区奖励门槛
	BonusScore     = 35 // 上半区奖励分
)

// Slot 单个计分项：未记录或已记录分数
type Slot struct {
	Scored bool
	Value  int
}

// Scorecard 一名玩家的记分卡
type Scorecard struct {
	slots map[rule.Category]Slot
}

// New 创建全部计分项未记录的记分卡
func New() *Scorecard {
	return &Scorecard{slots: make(map[rule.Category]Slot, len(rule.Categories))}
}

// Record 记录某个计分项，每项只能记录一次
func (s *Scorecard) Record(c rule.Category, value int) error {
	if !c.Valid() {
		return apperrors.ErrInvalidCategory
	}
	if s.IsSet(c) {
		return apperrors.ErrCategoryUsed
	}
	s.slots[c] = Slot{Scored: true, Value: value}
	return nil
}

// Get 获取某个计分项
func (s *Scorecard) Get(c rule.Category) Slot {
	return s.slots[c]
}

// IsSet 计分项是否已记录
func (s *Scorecard) IsSet(c rule.Category) bool {
	return s.slots[c].Scored
}

// Filled 已记录的计分项数量
func (s *Scorecard) Filled() int {
	n := 0
	for _, slot := range s.slots {
		if slot.Scored {
			n++
		}
	}
	return n
}

// Remaining 尚未记录的计分项数量
func (s *Scorecard) Remaining() int {
	return len(rule.Categories) - s.Filled()
}

// Complete 是否全部计分项都已记录
func (s *Scorecard) Complete() bool {
	return s.Remaining() == 0
}

// UpperSubtotal 上半区小计
func (s *Scorecard) UpperSubtotal() int {
	total := 0
	for _, c := range rule.UpperCategories {
		total += s.slots[c].Value
	}
	return total
}

// Bonus 上半区奖励
func (s *Scorecard) Bonus() int {
	return bonusFor(s.UpperSubtotal())
}

// Total 总分（全部已记录分数加奖励）
func (s *Scorecard) Total() int {
	total := 0
	for _, slot := range s.slots {
		total += slot.Value
	}
	return total + s.Bonus()
}

// Overlay 用已记录分数覆盖本次可得分，已记录的项不能再被选择
func (s *Scorecard) Overlay(possible map[rule.Category]int) map[rule.Category]int {
	out := make(map[rule.Category]int, len(possible))
	for c, v := range possible {
		if slot := s.slots[c]; slot.Scored {
			out[c] = slot.Value
			continue
		}
		out[c] = v
	}
	return out
}

// Snapshot 记分卡快照（用于协议输出）
func (s *Scorecard) Snapshot() Snapshot {
	snap := Snapshot{
		Scores:        make(map[rule.Category]int, len(s.slots)),
		UpperSubtotal: s.UpperSubtotal(),
		Bonus:         s.Bonus(),
		Total:         s.Total(),
	}
	for c, slot := range s.slots {
		if slot.Scored {
			snap.Scores[c] = slot.Value
		}
	}
	return snap
}

// Snapshot 记分卡只读视图，Scores 中缺失的项表示未记录
type Snapshot struct {
	Scores        map[rule.Category]int
	UpperSubtotal int
	Bonus         int
	Total         int
}

func bonusFor(subtotal int) int {
	if subtotal >= BonusThreshold {
		return BonusScore
	}
	return 0
}
