package server

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/yahtzee/internal/protocol"
	"github.com/palemoky/yahtzee/internal/protocol/codec"
)

const monitorInterval = 30 * time.Second

// monitorStats 定期记录服务器状态
func (s *Server) monitorStats() {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			log.Info().
				Int("online", s.GetOnlineCount()).
				Int("rooms", s.roomManager.Count()).
				Int("playing", s.roomManager.GetActiveGamesCount()).
				Int("goroutines", runtime.NumGoroutine()).
				Str("conns", fmt.Sprintf("%d/%d", len(s.semaphore), s.maxConnections)).
				Float64("mem_mb", float64(m.Alloc)/1024/1024).
				Msg("📊 [监控]")
		}
	}
}

// EnterMaintenanceMode 进入维护模式：拒绝新连接和新房间
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	s.BroadcastToLobby(codec.NewErrorMessageWithText(
		protocol.ErrCodeServerMaintenance, "👷🏻‍♂️ 维护模式：停止新的房间创建"))

	log.Info().Msg("🔧 进入维护模式：停止新连接和房间创建")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown 等待进行中的游戏结束（最多 timeout）后关闭
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	deadline := time.Now().Add(timeout)
	interval := s.config.Game.ShutdownCheckIntervalDuration()
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		active := s.roomManager.GetActiveGamesCount()
		if active == 0 {
			log.Info().Int("delay_sec", s.config.Game.RoomCleanupDelay).Msg("✅ 所有游戏已结束，准备关闭服务器")
			s.Broadcast(codec.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance,
				fmt.Sprintf("🚧 服务器将在 %d 秒后停机维护！", s.config.Game.RoomCleanupDelay)))
			break
		}
		log.Info().Int("playing", active).Msg("⏳ 等待游戏结束...")
		<-ticker.C
	}

	if active := s.roomManager.GetActiveGamesCount(); active > 0 {
		log.Warn().Int("playing", active).Msg("⚠️ 等待超时，强制关闭")
	}

	time.Sleep(s.config.Game.RoomCleanupDelayDuration())
	s.Shutdown()
}

// Shutdown 立即关闭：HTTP 服务、所有连接、房间清理和 Redis
func (s *Server) Shutdown() {
	s.doneOnce.Do(func() {
		close(s.done)

		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.httpServer.Shutdown(ctx); err != nil {
				log.Warn().Err(err).Msg("HTTP 服务关闭失败")
			}
			cancel()
		}

		s.clientsMu.RLock()
		for _, client := range s.clients {
			client.Close()
		}
		s.clientsMu.RUnlock()

		s.roomManager.Close()
		s.rateLimiter.Stop()
		if s.redis != nil {
			_ = s.redis.Close()
		}

		log.Info().Msg("👋 服务器已关闭")
	})
}
