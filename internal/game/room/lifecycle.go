package room

import (
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"
)

// generateRoomCode 生成房间号，调用者持有 rm.mu
func (rm *RoomManager) generateRoomCode() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
		}
		codeStr := string(code)
		if _, exists := rm.rooms[codeStr]; !exists {
			return codeStr
		}
	}
}

// cleanupLoop 定期清理过期房间
func (rm *RoomManager) cleanupLoop() {
	ticker := time.NewTicker(rm.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rm.stop:
			return
		case now := <-ticker.C:
			rm.cleanup(now)
		}
	}
}

// cleanup 清理空房间和已结束的房间，进行中的房间不会因空闲被清理
func (rm *RoomManager) cleanup(now time.Time) int {
	removed := 0
	for _, room := range rm.snapshot() {
		if rm.removeIfStale(room, now) {
			removed++
			log.Info().Str("room", room.Code).Msg("🧹 房间超时已清理")
		}
	}
	return removed
}

// removeIfStale 同时持有管理器锁和房间锁判断并删除，检查与删除之间不会有新玩家加入
func (rm *RoomManager) removeIfStale(room *Room, now time.Time) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	room.mu.Lock()
	defer room.mu.Unlock()

	if rm.rooms[room.Code] != room || !room.stale(now, rm.opts.RoomTimeout) {
		return false
	}
	delete(rm.rooms, room.Code)
	room.detach()
	return true
}
