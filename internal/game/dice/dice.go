package dice

import (
	"math/rand/v2"

	"github.com/palemoky/yahtzee/internal/apperrors"
)

const (
	Count    = 5 // 每手骰子数
	Faces    = 6 // 骰子面数
	MaxRolls = 3 // 每回合最多掷骰次数
)

// Hand 一手五颗骰子，0 表示尚未掷出
type Hand [Count]int

// Complete 是否五颗骰子都已掷出
func (h Hand) Complete() bool {
	for _, v := range h {
		if v < 1 || v > Faces {
			return false
		}
	}
	return true
}

// Counts 统计每个点数出现次数，下标即点数
func (h Hand) Counts() [Faces + 1]int {
	var counts [Faces + 1]int
	for _, v := range h {
		if v >= 1 && v <= Faces {
			counts[v]++
		}
	}
	return counts
}

// Sum 点数总和
func (h Hand) Sum() int {
	total := 0
	for _, v := range h {
		total += v
	}
	return total
}

// Slice 转为切片（用于协议输出）
func (h Hand) Slice() []int {
	out := make([]int, Count)
	copy(out, h[:])
	return out
}

// Roller 随机数来源
type Roller interface {
	IntN(n int) int
}

type randomRoller struct{}

func (randomRoller) IntN(n int) int { return rand.IntN(n) }

// NewRandomRoller 返回基于 math/rand/v2 的默认骰子
func NewRandomRoller() Roller {
	return randomRoller{}
}

// ValidIndex 骰子位置是否合法
func ValidIndex(i int) bool {
	return i >= 0 && i < Count
}

// ValidFace 点数是否合法
func ValidFace(v int) bool {
	return v >= 1 && v <= Faces
}

// Turn 一个玩家回合内的骰子状态
type Turn struct {
	Dice      Hand
	Held      [Count]bool
	RollsLeft int
}

// NewTurn 创建一个新回合
func NewTurn() *Turn {
	t := &Turn{}
	t.Reset()
	return t
}

// Reset 重置为新回合：3 次机会，骰子未掷、全部未保留
func (t *Turn) Reset() {
	t.Dice = Hand{}
	t.Held = [Count]bool{}
	t.RollsLeft = MaxRolls
}

// Rolled 本回合是否至少掷过一次
func (t Turn) Rolled() bool {
	return t.RollsLeft < MaxRolls
}

// Roll 重新掷出所有未保留的骰子
func (t *Turn) Roll(r Roller) (Hand, error) {
	if t.RollsLeft <= 0 {
		return t.Dice, apperrors.ErrNoRollsLeft
	}

	t.RollsLeft--
	for i := range t.Dice {
		if !t.Held[i] {
			t.Dice[i] = r.IntN(Faces) + 1
		}
	}
	return t.Dice, nil
}

// ToggleHold 切换某颗骰子的保留状态，变为保留时冻结为 value
func (t *Turn) ToggleHold(index, value int) (bool, error) {
	if !ValidIndex(index) {
		return false, apperrors.ErrInvalidDiceIndex
	}

	held := !t.Held[index]
	if held {
		if !ValidFace(value) {
			return false, apperrors.ErrInvalidDiceValue
		}
		t.Dice[index] = value
	}
	t.Held[index] = held
	return held, nil
}

// HeldSlice 保留状态切片（用于协议输出）
func (t Turn) HeldSlice() []bool {
	out := make([]bool, Count)
	copy(out, t.Held[:])
	return out
}
