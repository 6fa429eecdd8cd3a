//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/yahtzee/internal/server/storage"
)

// MockLeaderboard 排行榜 mock
type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) RecordGame(ctx context.Context, result storage.GameResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockLeaderboard) GetLeaderboard(ctx context.Context, board string, limit int) ([]storage.LeaderboardEntry, error) {
	args := m.Called(ctx, board, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.LeaderboardEntry), args.Error(1)
}
