package protocol

// 错误码
const (
	ErrCodeUnknown        = 1000
	ErrCodeInvalidMsg     = 1001
	ErrCodeRateLimit      = 1002 // 速率限制
	ErrCodeInvalidPayload = 1003 // 参数校验失败

	ErrCodeRoomNotFound = 2001
	ErrCodeRoomFull     = 2002
	ErrCodeNotInRoom    = 2003
	ErrCodeGameStarted  = 2004 // 游戏已开始
	ErrCodeNotHost      = 2005 // 只有房主可以开始游戏
	ErrCodeInvalidName  = 2006
	ErrCodeNameTaken    = 2007 // 房间内昵称重复

	ErrCodeGameNotStart     = 3001
	ErrCodeNotYourTurn      = 3002
	ErrCodeNoRollsLeft      = 3003
	ErrCodeMustRollFirst    = 3004
	ErrCodeCategoryUsed     = 3005
	ErrCodeInvalidCategory  = 3006
	ErrCodeInvalidDiceIndex = 3007
	ErrCodeInvalidDiceValue = 3008
	ErrCodeGameOver         = 3009

	ErrCodeLeaderboardDisabled = 4001
	ErrCodeServerMaintenance   = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:             "未知错误",
	ErrCodeInvalidMsg:          "无效的消息格式",
	ErrCodeRateLimit:           "请求过于频繁",
	ErrCodeInvalidPayload:      "请求参数无效",
	ErrCodeRoomNotFound:        "房间不存在",
	ErrCodeRoomFull:            "房间已满",
	ErrCodeNotInRoom:           "您不在房间中",
	ErrCodeGameStarted:         "游戏已开始",
	ErrCodeNotHost:             "只有房主可以开始游戏",
	ErrCodeInvalidName:         "昵称无效",
	ErrCodeNameTaken:           "昵称已被房间内其他玩家使用",
	ErrCodeGameNotStart:        "游戏尚未开始",
	ErrCodeNotYourTurn:         "还没轮到您",
	ErrCodeNoRollsLeft:         "本回合已没有掷骰次数",
	ErrCodeMustRollFirst:       "请先掷骰子",
	ErrCodeCategoryUsed:        "该计分项已记录",
	ErrCodeInvalidCategory:     "无效的计分项",
	ErrCodeInvalidDiceIndex:    "无效的骰子位置",
	ErrCodeInvalidDiceValue:    "无效的骰子点数",
	ErrCodeGameOver:            "游戏已结束",
	ErrCodeLeaderboardDisabled: "排行榜未启用",
	ErrCodeServerMaintenance:   "服务器维护中",
}
