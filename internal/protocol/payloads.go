package protocol

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// RoomPayload 只携带房间号的请求（开始游戏、掷骰、离开房间）
type RoomPayload struct {
	Code string `json:"code" validate:"required,len=6,alphanum"`
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	Code string `json:"code" validate:"required,len=6,alphanum"`
	Name string `json:"name" validate:"required,max=20"`
}

// ToggleHoldPayload 切换保留请求
type ToggleHoldPayload struct {
	Code      string `json:"code" validate:"required,len=6,alphanum"`
	DiceIndex int    `json:"dice_index" validate:"min=0,max=4"`
	Value     int    `json:"value" validate:"omitempty,min=1,max=6"` // 客户端看到的骰子点数，取消保留时可省略
}

// SelectScorePayload 选择计分项请求
type SelectScorePayload struct {
	Code     string `json:"code" validate:"required,len=6,alphanum"`
	Category string `json:"category" validate:"required"`
}

// GetLeaderboardPayload 获取排行榜请求
type GetLeaderboardPayload struct {
	Type  string `json:"type" validate:"omitempty,oneof=total daily"`
	Limit int    `json:"limit" validate:"min=0,max=100"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	ConnID string `json:"conn_id"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// RoomCreatedPayload 房间创建成功响应
type RoomCreatedPayload struct {
	Code string `json:"code"`
}

// JoinedPayload 加入房间成功响应
type JoinedPayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"player_id"`
	IsHost   bool   `json:"is_host"`
}

// PlayerListPayload 房间玩家列表（按座位顺序）
type PlayerListPayload struct {
	Players []string `json:"players"`
	Host    string   `json:"host,omitempty"` // 房主昵称
}

// GameStartedPayload 游戏开始通知
type GameStartedPayload struct {
	CurrentTurnPlayerID string `json:"current_turn_player_id"`
	CurrentTurnName     string `json:"current_turn_name"`
}

// DiceRolledPayload 掷骰结果
type DiceRolledPayload struct {
	PlayerID  string `json:"player_id"`
	Dice      []int  `json:"dice"`
	RollsLeft int    `json:"rolls_left"`
}

// DiceHeldPayload 保留状态变化
type DiceHeldPayload struct {
	PlayerID string `json:"player_id"`
	Held     []bool `json:"held"`
	Dice     []int  `json:"dice"`
}

// ScorecardInfo 记分卡，Scores 中缺失的项表示未记录
type ScorecardInfo struct {
	Scores        map[string]int `json:"scores"`
	UpperSubtotal int            `json:"upper_subtotal"`
	Bonus         int            `json:"bonus"`
	Total         int            `json:"total"`
}

// ScorecardsUpdatedPayload 当前回合玩家的可得分与已记录分数
type ScorecardsUpdatedPayload struct {
	PossibleScores map[string]int `json:"possible_scores"`
	RealScorecard  ScorecardInfo  `json:"real_scorecard"`
	PlayerID       string         `json:"player_id"`
	Name           string         `json:"name"`
}

// TurnEndedPayload 回合结束，携带下一位回合玩家
type TurnEndedPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

// StandingInfo 最终成绩
type StandingInfo struct {
	PlayerID  string        `json:"player_id"`
	Name      string        `json:"name"`
	Total     int           `json:"total"`
	Scorecard ScorecardInfo `json:"scorecard"`
}

// GameOverPayload 游戏结束通知
type GameOverPayload struct {
	WinnerID    string         `json:"winner_id"`
	WinnerName  string         `json:"winner_name"`
	WinnerScore int            `json:"winner_score"`
	Standings   []StandingInfo `json:"standings"` // 按座位顺序
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// LeaderboardResultPayload 排行榜结果
type LeaderboardResultPayload struct {
	Type    string             `json:"type"` // total/daily
	Entries []LeaderboardEntry `json:"entries"`
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

// RoomListResultPayload 房间列表结果
type RoomListResultPayload struct {
	Rooms []RoomListItem `json:"rooms"`
}

// RoomListItem 房间列表项
type RoomListItem struct {
	Code        string `json:"code"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
	Phase       string `json:"phase"`
}

// RoomInfo 房间状态（HTTP 查询）
type RoomInfo struct {
	Code    string   `json:"code"`
	Players []string `json:"players"`
	Host    string   `json:"host,omitempty"`
	Phase   string   `json:"phase"`
}
