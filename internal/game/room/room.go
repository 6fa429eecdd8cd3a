package room

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/yahtzee/internal/apperrors"
	"github.com/palemoky/yahtzee/internal/game/rule"
	"github.com/palemoky/yahtzee/internal/game/session"
	"github.com/palemoky/yahtzee/internal/protocol"
	"github.com/palemoky/yahtzee/internal/protocol/codec"
	"github.com/palemoky/yahtzee/internal/protocol/convert"
	"github.com/palemoky/yahtzee/internal/types"
)

// GameOverHook 游戏结束回调，在房间锁之外异步调用
type GameOverHook func(code string, outcome session.Outcome)

// Room 游戏房间
//
// 所有操作持有房间锁执行，广播也在锁内完成，保证成员按提交顺序收到事件。
type Room struct {
	Code       string    // 房间号
	CreatedAt  time.Time // 创建时间
	MaxPlayers int

	session    *session.Session
	members    map[string]types.ClientInterface // connID -> client
	lastActive time.Time
	onGameOver GameOverHook
	removed    bool // 已从管理器删除

	mu sync.Mutex
}

func newRoom(code string, opts session.Options, hook GameOverHook) *Room {
	now := time.Now()
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = session.DefaultMaxPlayers
	}
	s := session.New(opts)
	return &Room{
		Code:       code,
		CreatedAt:  now,
		MaxPlayers: opts.MaxPlayers,
		session:    s,
		members:    make(map[string]types.ClientInterface),
		lastActive: now,
		onGameOver: hook,
	}
}

// Join 玩家加入房间
func (r *Room) Join(client types.ClientInterface, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.removed {
		return apperrors.ErrRoomNotFound
	}
	player, err := r.session.Join(client.GetID(), name)
	if err != nil {
		return err
	}
	r.touch()
	r.members[client.GetID()] = client
	client.SetRoom(r.Code)

	client.SendMessage(codec.MustNewMessage(protocol.MsgJoined, protocol.JoinedPayload{
		Code:     r.Code,
		PlayerID: player.ID,
		IsHost:   player.ID == r.session.HostID(),
	}))
	r.broadcast(r.playerListMessage())

	log.Info().Str("room", r.Code).Str("player", player.Name).Msg("👤 玩家加入房间")
	return nil
}

// Start 房主开始游戏
func (r *Room) Start(client types.ClientInterface) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.session.Start(client.GetID()); err != nil {
		return err
	}
	r.touch()

	current, _ := r.session.CurrentPlayer()
	r.broadcast(codec.MustNewMessage(protocol.MsgGameStarted, protocol.GameStartedPayload{
		CurrentTurnPlayerID: current.ID,
		CurrentTurnName:     current.Name,
	}))

	log.Info().Str("room", r.Code).Int("players", r.session.PlayerCount()).Msg("🎲 游戏开始")
	return nil
}

// Roll 掷骰
func (r *Room) Roll(client types.ClientInterface) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.session.Roll(client.GetID())
	if err != nil {
		return err
	}
	r.touch()
	r.broadcastRoll(res)
	return nil
}

// ToggleHold 切换骰子保留状态
func (r *Room) ToggleHold(client types.ClientInterface, index, value int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.session.ToggleHold(client.GetID(), index, value)
	if err != nil {
		return err
	}
	r.touch()
	r.broadcast(codec.MustNewMessage(protocol.MsgDiceHeld, convert.DiceHeld(res)))
	return nil
}

// SelectScore 记录计分项，结束当前回合
func (r *Room) SelectScore(client types.ClientInterface, category string) error {
	c, err := rule.ParseCategory(category)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.session.SelectScore(client.GetID(), c)
	if err != nil {
		return err
	}
	r.touch()
	r.broadcast(codec.MustNewMessage(protocol.MsgScorecardsUpdated, convert.ScoreCommitted(res)))

	log.Debug().Str("room", r.Code).Str("player", res.Player.Name).
		Str("category", string(c)).Int("score", res.Value).Msg("📝 记录计分项")

	if res.GameOver != nil {
		r.endGame(res.GameOver)
		return nil
	}
	r.passTurn(res.Next, res.NextRoll)
	return nil
}

// Leave 玩家离开房间，返回 false 表示不在房间中
func (r *Room) Leave(client types.ClientInterface) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[client.GetID()]; !ok {
		return false
	}
	delete(r.members, client.GetID())
	if client.GetRoom() == r.Code {
		client.SetRoom("")
	}

	res, ok := r.session.Remove(client.GetID())
	if !ok {
		return true
	}
	r.touch()

	log.Info().Str("room", r.Code).Str("player", res.Player.Name).Msg("👋 玩家离开房间")
	if res.Empty {
		return true
	}

	r.broadcast(r.playerListMessage())
	switch {
	case res.GameOver != nil:
		r.endGame(res.GameOver)
	case res.TurnPassed:
		r.passTurn(res.Next, res.NextRoll)
	}
	return true
}

// Phase 当前阶段
func (r *Room) Phase() session.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.Phase()
}

// IsEmpty 房间是否没有成员
func (r *Room) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members) == 0
}

// HasMember 连接是否在房间中
func (r *Room) HasMember(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[connID]
	return ok
}

// Info 房间状态
func (r *Room) Info() protocol.RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return protocol.RoomInfo{
		Code:    r.Code,
		Players: r.session.Names(),
		Host:    r.hostName(),
		Phase:   r.session.Phase().String(),
	}
}

// ListItem 房间列表项
func (r *Room) ListItem() protocol.RoomListItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return protocol.RoomListItem{
		Code:        r.Code,
		PlayerCount: r.session.PlayerCount(),
		MaxPlayers:  r.MaxPlayers,
		Phase:       r.session.Phase().String(),
	}
}

// Broadcast 向房间内所有成员发送消息
func (r *Room) Broadcast(msg *protocol.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcast(msg)
}

// --- 以下方法要求调用者持有 r.mu ---

// stale 空闲超时且为空房间或已结束
func (r *Room) stale(now time.Time, timeout time.Duration) bool {
	if now.Sub(r.lastActive) <= timeout {
		return false
	}
	return len(r.members) == 0 || r.session.Phase() == session.PhaseGameOver
}

// detach 标记为已删除并清理成员的房间状态
func (r *Room) detach() {
	r.removed = true
	for _, c := range r.members {
		if c.GetRoom() == r.Code {
			c.SetRoom("")
		}
	}
	r.members = make(map[string]types.ClientInterface)
}

// broadcast 非阻塞投递，单个成员投递失败不影响已提交的状态
func (r *Room) broadcast(msg *protocol.Message) {
	for _, client := range r.members {
		client.SendMessage(msg)
	}
}

func (r *Room) broadcastRoll(res session.RollResult) {
	r.broadcast(codec.MustNewMessage(protocol.MsgDiceRolled, convert.DiceRolled(res)))
	r.broadcast(codec.MustNewMessage(protocol.MsgScorecardsUpdated, convert.ScorecardsUpdated(res)))
}

// passTurn 通知下一位玩家的回合开始并广播自动掷骰
func (r *Room) passTurn(next session.Player, roll *session.RollResult) {
	r.broadcast(codec.MustNewMessage(protocol.MsgTurnEnded, convert.TurnEnded(next)))
	if roll != nil {
		r.broadcastRoll(*roll)
	}
}

func (r *Room) endGame(outcome *session.Outcome) {
	r.broadcast(codec.MustNewMessage(protocol.MsgGameOver, convert.GameOver(outcome)))

	log.Info().Str("room", r.Code).Str("winner", outcome.Winner.Player.Name).
		Int("score", outcome.Winner.Total).Msg("🏆 游戏结束")

	if r.onGameOver != nil {
		go r.onGameOver(r.Code, *outcome)
	}
}

func (r *Room) playerListMessage() *protocol.Message {
	return codec.MustNewMessage(protocol.MsgPlayerList, protocol.PlayerListPayload{
		Players: r.session.Names(),
		Host:    r.hostName(),
	})
}

func (r *Room) hostName() string {
	for _, p := range r.session.Players() {
		if p.ID == r.session.HostID() {
			return p.Name
		}
	}
	return ""
}

func (r *Room) touch() {
	r.lastActive = time.Now()
}
