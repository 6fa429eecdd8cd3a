package room

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/yahtzee/internal/game/session"
	"github.com/palemoky/yahtzee/internal/protocol"
	"github.com/palemoky/yahtzee/internal/types"
)

const (
	roomCodeLength = 6                                      // 房间号长度
	roomCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789" // 房间号字符集

	defaultRoomTimeout     = 10 * time.Minute
	defaultCleanupInterval = time.Minute
)

// Options 房间管理器配置
type Options struct {
	Session         session.Options
	RoomTimeout     time.Duration // 空房间和已结束房间的保留时间
	CleanupInterval time.Duration
	OnGameOver      GameOverHook
}

// RoomManager 房间管理器：房间号到房间的唯一映射
type RoomManager struct {
	opts  Options
	rooms map[string]*Room
	mu    sync.RWMutex

	stopOnce sync.Once
	stop     chan struct{}
}

// NewRoomManager 创建房间管理器并启动清理协程
func NewRoomManager(opts Options) *RoomManager {
	if opts.RoomTimeout <= 0 {
		opts.RoomTimeout = defaultRoomTimeout
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}

	rm := &RoomManager{
		opts:  opts,
		rooms: make(map[string]*Room),
		stop:  make(chan struct{}),
	}

	go rm.cleanupLoop()

	return rm
}

// Close 停止清理协程
func (rm *RoomManager) Close() {
	rm.stopOnce.Do(func() { close(rm.stop) })
}

// CreateRoom 创建房间，房间号冲突时重新生成
func (rm *RoomManager) CreateRoom() *Room {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	code := rm.generateRoomCode()
	room := newRoom(code, rm.opts.Session, rm.opts.OnGameOver)
	rm.rooms[code] = room

	log.Info().Str("room", code).Msg("🏠 房间已创建")
	return room
}

// GetRoom 获取房间，不存在时返回 nil
func (rm *RoomManager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[code]
}

// DeleteRoom 删除房间并清理成员的房间状态
func (rm *RoomManager) DeleteRoom(code string) bool {
	rm.mu.Lock()
	room, ok := rm.rooms[code]
	delete(rm.rooms, code)
	rm.mu.Unlock()

	if !ok {
		return false
	}

	room.mu.Lock()
	room.detach()
	room.mu.Unlock()

	log.Info().Str("room", code).Msg("🏠 房间已删除")
	return true
}

// Disconnect 将连接从所有房间移除
func (rm *RoomManager) Disconnect(client types.ClientInterface) {
	for _, room := range rm.snapshot() {
		room.Leave(client)
	}
}

// GetRoomList 获取可加入的房间列表
func (rm *RoomManager) GetRoomList() []protocol.RoomListItem {
	rooms := make([]protocol.RoomListItem, 0)
	for _, room := range rm.snapshot() {
		item := room.ListItem()
		// 只返回等待中且未满的房间
		if item.Phase == session.PhaseWaiting.String() && item.PlayerCount < item.MaxPlayers {
			rooms = append(rooms, item)
		}
	}
	return rooms
}

// GetActiveGamesCount 获取进行中的游戏数量
func (rm *RoomManager) GetActiveGamesCount() int {
	count := 0
	for _, room := range rm.snapshot() {
		if room.Phase() == session.PhasePlaying {
			count++
		}
	}
	return count
}

// Count 房间总数
func (rm *RoomManager) Count() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// snapshot 复制房间列表，避免持有管理器锁时获取房间锁
func (rm *RoomManager) snapshot() []*Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	rooms := make([]*Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}
