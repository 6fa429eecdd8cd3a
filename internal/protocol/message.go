package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgCreateRoom MessageType = "create_room" // 创建房间
	MsgJoinRoom   MessageType = "join_room"   // 加入房间
	MsgLeaveRoom  MessageType = "leave_room"  // 离开房间
	MsgStartGame  MessageType = "start_game"  // 房主开始游戏

	// 游戏操作
	MsgRollDice    MessageType = "roll_dice"    // 掷骰
	MsgToggleHold  MessageType = "toggle_hold"  // 切换保留
	MsgSelectScore MessageType = "select_score" // 选择计分项

	// 查询
	MsgGetRoomList    MessageType = "get_room_list"   // 获取房间列表
	MsgGetLeaderboard MessageType = "get_leaderboard" // 获取排行榜
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected MessageType = "connected" // 连接成功
	MsgPong      MessageType = "pong"      // 心跳 pong

	// 房间相关
	MsgRoomCreated MessageType = "room_created" // 房间创建成功
	MsgJoined      MessageType = "joined"       // 加入房间成功（仅发给加入者）
	MsgPlayerList  MessageType = "player_list"  // 玩家列表（广播）

	// 游戏流程
	MsgGameStarted       MessageType = "game_started"       // 游戏开始
	MsgDiceRolled        MessageType = "dice_rolled"        // 掷骰结果
	MsgDiceHeld          MessageType = "dice_held"          // 保留状态变化
	MsgScorecardsUpdated MessageType = "scorecards_updated" // 可得分与记分卡
	MsgTurnEnded         MessageType = "turn_ended"         // 回合结束，轮到下一位
	MsgGameOver          MessageType = "game_over"          // 游戏结束

	// 查询结果
	MsgRoomListResult    MessageType = "room_list_result"   // 房间列表结果
	MsgLeaderboardResult MessageType = "leaderboard_result" // 排行榜结果

	// 错误
	MsgError MessageType = "error" // 错误消息
)
