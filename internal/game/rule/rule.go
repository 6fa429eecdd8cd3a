package rule

import (
	"slices"

	"github.com/palemoky/yahtzee/internal/apperrors"
	"github.com/palemoky/yahtzee/internal/game/dice"
)

// Category 计分项
type Category string

const (
	Ones   Category = "ones"
	Twos   Category = "twos"
	Threes Category = "threes"
	Fours  Category = "fours"
	Fives  Category = "fives"
	Sixes  Category = "sixes"

	ThreeOfAKind  Category = "three_of_a_kind" // 三条
	FourOfAKind   Category = "four_of_a_kind"  // 四条
	FullHouse     Category = "full_house"      // 葫芦
	SmallStraight Category = "small_straight"  // 小顺
	LargeStraight Category = "large_straight"  // 大顺
	Yahtzee       Category = "yahtzee"         // 五骰同点
	Chance        Category = "chance"          // 任意组合
)

// 固定分值
const (
	FullHouseScore     = 25
	SmallStraightScore = 30
	LargeStraightScore = 40
	YahtzeeScore       = 50
)

// Categories 全部 13 个计分项（记分卡顺序）
var Categories = []Category{
	Ones, Twos, Threes, Fours, Fives, Sixes,
	ThreeOfAKind, FourOfAKind, FullHouse,
	SmallStraight, LargeStraight, Yahtzee, Chance,
}

// UpperCategories 上半区（单点数）计分项
var UpperCategories = []Category{Ones, Twos, Threes, Fours, Fives, Sixes}

// upperFaces 上半区计分项对应的点数
var upperFaces = map[Category]int{
	Ones:   1,
	Twos:   2,
	Threes: 3,
	Fours:  4,
	Fives:  5,
	Sixes:  6,
}

// categoryNames 计分项显示名称
var categoryNames = map[Category]string{
	Ones:          "一点",
	Twos:          "二点",
	Threes:        "三点",
	Fours:         "四点",
	Fives:         "五点",
	Sixes:         "六点",
	ThreeOfAKind:  "三条",
	FourOfAKind:   "四条",
	FullHouse:     "葫芦",
	SmallStraight: "小顺",
	LargeStraight: "大顺",
	Yahtzee:       "快艇",
	Chance:        "全选",
}

// scorer 计分函数类型
type scorer func(h dice.Hand, counts [dice.Faces + 1]int) int

// scorers 下半区计分函数映射表
var scorers = map[Category]scorer{
	ThreeOfAKind:  func(h dice.Hand, c [dice.Faces + 1]int) int { return ofAKind(h, c, 3) },
	FourOfAKind:   func(h dice.Hand, c [dice.Faces + 1]int) int { return ofAKind(h, c, 4) },
	FullHouse:     func(_ dice.Hand, c [dice.Faces + 1]int) int { return fullHouse(c) },
	SmallStraight: func(_ dice.Hand, c [dice.Faces + 1]int) int { return straight(c, 4, SmallStraightScore) },
	LargeStraight: func(_ dice.Hand, c [dice.Faces + 1]int) int { return straight(c, 5, LargeStraightScore) },
	Yahtzee:       func(_ dice.Hand, c [dice.Faces + 1]int) int { return yahtzee(c) },
	Chance:        func(h dice.Hand, _ [dice.Faces + 1]int) int { return h.Sum() },
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "无效"
}

// IsUpper 是否为上半区计分项
func (c Category) IsUpper() bool {
	_, ok := upperFaces[c]
	return ok
}

// Valid 是否为已知计分项
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// ParseCategory 解析计分项名称
func ParseCategory(name string) (Category, error) {
	c := Category(name)
	if !c.Valid() {
		return "", apperrors.ErrInvalidCategory
	}
	return c, nil
}

// ScoreCategory 计算一手骰子在某个计分项下的得分
func ScoreCategory(h dice.Hand, c Category) int {
	counts := h.Counts()
	if face, ok := upperFaces[c]; ok {
		return counts[face] * face
	}
	if fn, ok := scorers[c]; ok {
		return fn(h, counts)
	}
	return 0
}

// Score 计算一手骰子在全部计分项下的得分
func Score(h dice.Hand) map[Category]int {
	counts := h.Counts()
	scores := make(map[Category]int, len(Categories))
	for c, face := range upperFaces {
		scores[c] = counts[face] * face
	}
	for c, fn := range scorers {
		scores[c] = fn(h, counts)
	}
	return scores
}

// maxCount 同一点数的最多出现次数
func maxCount(counts [dice.Faces + 1]int) int {
	return slices.Max(counts[1:])
}

func ofAKind(h dice.Hand, counts [dice.Faces + 1]int, n int) int {
	if maxCount(counts) >= n {
		return h.Sum()
	}
	return 0
}

// fullHouse 恰好一个对子加一个三条（五骰同点不算）
func fullHouse(counts [dice.Faces + 1]int) int {
	var nonZero []int
	for _, n := range counts[1:] {
		if n > 0 {
			nonZero = append(nonZero, n)
		}
	}
	slices.Sort(nonZero)
	if slices.Equal(nonZero, []int{2, 3}) {
		return FullHouseScore
	}
	return 0
}

// straight 是否包含长度为 length 的连续点数
func straight(counts [dice.Faces + 1]int, length, score int) int {
	run := 0
	for face := 1; face <= dice.Faces; face++ {
		if counts[face] == 0 {
			run = 0
			continue
		}
		run++
		if run >= length {
			return score
		}
	}
	return 0
}

func yahtzee(counts [dice.Faces + 1]int) int {
	if maxCount(counts) == dice.Count {
		return YahtzeeScore
	}
	return 0
}
