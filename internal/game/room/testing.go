//go:build !production

package room

import "time"

// AddRoomForTest 添加房间用于测试
func (rm *RoomManager) AddRoomForTest(room *Room) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.rooms[room.Code] = room
}

// NewRoomForTest 创建不归属任何管理器的房间
func NewRoomForTest(code string, opts Options) *Room {
	return newRoom(code, opts.Session, opts.OnGameOver)
}

// SetLastActiveForTest 修改房间最后活跃时间
func (r *Room) SetLastActiveForTest(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActive = t
}

// CleanupForTest 立即执行一次清理
func (rm *RoomManager) CleanupForTest(now time.Time) int {
	return rm.cleanup(now)
}
