package apperrors

import (
	"errors"

	"github.com/palemoky/yahtzee/internal/protocol"
)

// Kind 错误分类
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindUnauthorized
	KindInvalidState
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidState:
		return "invalid_state"
	case KindInvalidArgument:
		return "invalid_argument"
	default:
		return "unknown"
	}
}

// GameError 游戏错误（房间和会话共享）
type GameError struct {
	Kind    Kind
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

func newError(kind Kind, code int) *GameError {
	return &GameError{Kind: kind, Code: code, Message: protocol.ErrorMessages[code]}
}

// 预定义错误
var (
	ErrRoomNotFound = newError(KindNotFound, protocol.ErrCodeRoomNotFound)

	ErrNotHost     = newError(KindUnauthorized, protocol.ErrCodeNotHost)
	ErrNotInRoom   = newError(KindUnauthorized, protocol.ErrCodeNotInRoom)
	ErrNotYourTurn = newError(KindUnauthorized, protocol.ErrCodeNotYourTurn)

	ErrRoomFull      = newError(KindInvalidState, protocol.ErrCodeRoomFull)
	ErrNameTaken     = newError(KindInvalidState, protocol.ErrCodeNameTaken)
	ErrGameStarted   = newError(KindInvalidState, protocol.ErrCodeGameStarted)
	ErrGameNotStart  = newError(KindInvalidState, protocol.ErrCodeGameNotStart)
	ErrGameOver      = newError(KindInvalidState, protocol.ErrCodeGameOver)
	ErrNoRollsLeft   = newError(KindInvalidState, protocol.ErrCodeNoRollsLeft)
	ErrMustRollFirst = newError(KindInvalidState, protocol.ErrCodeMustRollFirst)
	ErrCategoryUsed  = newError(KindInvalidState, protocol.ErrCodeCategoryUsed)

	ErrNotEnoughPlayers = &GameError{Kind: KindInvalidState, Code: protocol.ErrCodeGameNotStart, Message: "玩家人数不足"}

	ErrInvalidCategory  = newError(KindInvalidArgument, protocol.ErrCodeInvalidCategory)
	ErrInvalidDiceIndex = newError(KindInvalidArgument, protocol.ErrCodeInvalidDiceIndex)
	ErrInvalidDiceValue = newError(KindInvalidArgument, protocol.ErrCodeInvalidDiceValue)
	ErrInvalidName      = newError(KindInvalidArgument, protocol.ErrCodeInvalidName)
	ErrInvalidPayload   = newError(KindInvalidArgument, protocol.ErrCodeInvalidPayload)
)

// InvalidArgument 创建带自定义文本的参数错误
func InvalidArgument(message string) *GameError {
	return &GameError{Kind: KindInvalidArgument, Code: protocol.ErrCodeInvalidPayload, Message: message}
}

// IsKind 判断错误链中是否包含指定分类的 GameError
func IsKind(err error, kind Kind) bool {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr.Kind == kind
	}
	return false
}
