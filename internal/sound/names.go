// Package sound 终端客户端音效
package sound

// 音效名称，对应 assets/sounds 下的文件名（不含扩展名）
const (
	Roll  = "roll"  // 掷骰
	Turn  = "turn"  // 轮到自己
	Score = "score" // 记录计分项
	Win   = "win"   // 本人获胜
	Bell  = "bell"  // 错误提示
)

// DefaultDir 默认音效目录
const DefaultDir = "assets/sounds"
