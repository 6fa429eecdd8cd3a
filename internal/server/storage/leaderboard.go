package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/yahtzee/internal/game/session"
)

const (
	// Redis key
	playerStatsKey   = "yahtzee:player:"
	leaderboardKey   = "yahtzee:leaderboard:best"
	dailyLeaderboard = "yahtzee:leaderboard:daily:"

	dailyExpiration = 48 * time.Hour

	// 排行榜类型
	BoardTotal = "total"
	BoardDaily = "daily"

	DefaultLimit = 10
	MaxLimit     = 100
)

// 统计 hash 字段
const (
	fieldName       = "name"
	fieldGames      = "games"
	fieldWins       = "wins"
	fieldTotalScore = "total_score"
	fieldLastPlayed = "last_played_at"
)

// PlayerResult 单个玩家的终局得分
type PlayerResult struct {
	Name  string
	Score int
}

// GameResult 一局游戏结果
type GameResult struct {
	RoomCode   string
	Winner     string
	Players    []PlayerResult
	FinishedAt time.Time
}

// NewGameResult 从终局结果构建记录
func NewGameResult(code string, outcome session.Outcome) GameResult {
	players := make([]PlayerResult, 0, len(outcome.Standings))
	for _, s := range outcome.Standings {
		players = append(players, PlayerResult{Name: s.Player.Name, Score: s.Total})
	}
	return GameResult{
		RoomCode:   code,
		Winner:     outcome.Winner.Player.Name,
		Players:    players,
		FinishedAt: time.Now(),
	}
}

// PlayerStats 玩家统计数据，按名字聚合
type PlayerStats struct {
	PlayerName   string  `json:"player_name"`
	Games        int     `json:"games"`
	Wins         int     `json:"wins"`
	BestScore    int     `json:"best_score"`
	TotalScore   int     `json:"total_score"`
	AverageScore float64 `json:"average_score"`
	LastPlayedAt int64   `json:"last_played_at"`
}

// WinRate 胜率（百分比）
func (s *PlayerStats) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games) * 100
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerName string  `json:"player_name"`
	BestScore  int     `json:"best_score"`
	Games      int     `json:"games"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
}

// LeaderboardManager 排行榜管理器
type LeaderboardManager struct {
	redis *redis.Client
}

// NewLeaderboardManager 创建排行榜管理器
func NewLeaderboardManager(client *redis.Client) *LeaderboardManager {
	return &LeaderboardManager{redis: client}
}

// RecordGame 记录一局结果：更新每个玩家的统计和最高分榜
func (lm *LeaderboardManager) RecordGame(ctx context.Context, result GameResult) error {
	if len(result.Players) == 0 {
		return nil
	}
	if result.FinishedAt.IsZero() {
		result.FinishedAt = time.Now()
	}
	dailyKey := dailyKeyFor(result.FinishedAt)

	_, err := lm.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range result.Players {
			key := statsKey(p.Name)
			pipe.HSet(ctx, key, fieldName, p.Name, fieldLastPlayed, result.FinishedAt.Unix())
			pipe.HIncrBy(ctx, key, fieldGames, 1)
			pipe.HIncrBy(ctx, key, fieldTotalScore, int64(p.Score))
			if p.Name == result.Winner {
				pipe.HIncrBy(ctx, key, fieldWins, 1)
			}

			member := redis.Z{Score: float64(p.Score), Member: p.Name}
			pipe.ZAddGT(ctx, leaderboardKey, member)
			pipe.ZAddGT(ctx, dailyKey, member)
		}
		pipe.Expire(ctx, dailyKey, dailyExpiration)
		return nil
	})
	return err
}

// GetPlayerStats 获取玩家统计，未上榜返回 nil
func (lm *LeaderboardManager) GetPlayerStats(ctx context.Context, name string) (*PlayerStats, error) {
	fields, err := lm.redis.HGetAll(ctx, statsKey(name)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	stats := &PlayerStats{
		PlayerName:   fields[fieldName],
		Games:        atoi(fields[fieldGames]),
		Wins:         atoi(fields[fieldWins]),
		TotalScore:   atoi(fields[fieldTotalScore]),
		LastPlayedAt: int64(atoi(fields[fieldLastPlayed])),
	}
	if stats.Games > 0 {
		stats.AverageScore = float64(stats.TotalScore) / float64(stats.Games)
	}

	best, err := lm.redis.ZScore(ctx, leaderboardKey, name).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	stats.BestScore = int(best)
	return stats, nil
}

// GetLeaderboard 按最高分从高到低获取排行榜
func (lm *LeaderboardManager) GetLeaderboard(ctx context.Context, board string, limit int) ([]LeaderboardEntry, error) {
	limit = clampLimit(limit)

	key := leaderboardKey
	if board == BoardDaily {
		key = dailyKeyFor(time.Now())
	}

	results, err := lm.redis.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for i, z := range results {
		name, ok := z.Member.(string)
		if !ok {
			continue
		}
		entry := LeaderboardEntry{
			Rank:       i + 1,
			PlayerName: name,
			BestScore:  int(z.Score),
		}

		stats, err := lm.GetPlayerStats(ctx, name)
		if err != nil {
			return nil, err
		}
		if stats != nil {
			entry.Games = stats.Games
			entry.Wins = stats.Wins
			entry.WinRate = stats.WinRate()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetPlayerRank 获取玩家在总榜的排名，未上榜返回 -1
func (lm *LeaderboardManager) GetPlayerRank(ctx context.Context, name string) (int64, error) {
	rank, err := lm.redis.ZRevRank(ctx, leaderboardKey, name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil // Redis 排名从 0 开始
}

func statsKey(name string) string {
	return playerStatsKey + name
}

func dailyKeyFor(t time.Time) string {
	return dailyLeaderboard + t.Format(time.DateOnly)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
