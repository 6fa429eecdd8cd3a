package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/yahtzee/internal/apperrors"
	"github.com/palemoky/yahtzee/internal/protocol"
)

// Format 帧格式
type Format int

const (
	FormatJSON     Format = iota // websocket 文本帧
	FormatProtobuf               // websocket 二进制帧
)

func (f Format) String() string {
	if f == FormatProtobuf {
		return "protobuf"
	}
	return "json"
}

// envelope 字段名
const (
	fieldType    = "type"
	fieldPayload = "payload"
)

var ErrMissingType = errors.New("codec: message type missing")

// NewMessage 创建一个新消息，payload 以 JSON 保存
func NewMessage(msgType protocol.MessageType, payload any) (*protocol.Message, error) {
	var data json.RawMessage
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
		}
	}
	return &protocol.Message{Type: msgType, Payload: data}, nil
}

// MustNewMessage 创建消息，失败时 panic
func MustNewMessage(msgType protocol.MessageType, payload any) *protocol.Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Encode 按指定格式编码消息
func Encode(msg *protocol.Message, format Format) ([]byte, error) {
	if format == FormatProtobuf {
		return EncodeBinary(msg)
	}
	return EncodeJSON(msg)
}

// Decode 按指定格式解码消息
// 注意: 使用完毕后应调用 PutMessage 归还对象到池
func Decode(data []byte, format Format) (*protocol.Message, error) {
	if format == FormatProtobuf {
		return DecodeBinary(data)
	}
	return DecodeJSON(data)
}

// EncodeJSON 将消息编码为 JSON 字节
func EncodeJSON(msg *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(msg); err != nil {
		return nil, err
	}
	// Encoder 会追加换行
	out := make([]byte, buf.Len()-1)
	copy(out, buf.Bytes())
	return out, nil
}

// DecodeJSON 从 JSON 字节解码消息
func DecodeJSON(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, err
	}
	if msg.Type == "" {
		PutMessage(msg)
		return nil, ErrMissingType
	}
	return msg, nil
}

// EncodeBinary 将消息编码为 protobuf 字节（google.protobuf.Struct 信封）
func EncodeBinary(msg *protocol.Message) ([]byte, error) {
	env := getEnvelope()
	defer putEnvelope(env)

	env.Fields = map[string]*structpb.Value{
		fieldType: structpb.NewStringValue(string(msg.Type)),
	}
	if len(msg.Payload) > 0 {
		payload := &structpb.Value{}
		if err := protojson.Unmarshal(msg.Payload, payload); err != nil {
			return nil, fmt.Errorf("convert %s payload: %w", msg.Type, err)
		}
		env.Fields[fieldPayload] = payload
	}
	return proto.Marshal(env)
}

// DecodeBinary 从 protobuf 字节解码消息
// 注意: 使用完毕后应调用 PutMessage 归还对象到池
func DecodeBinary(data []byte) (*protocol.Message, error) {
	env := getEnvelope()
	defer putEnvelope(env)

	if err := proto.Unmarshal(data, env); err != nil {
		return nil, err
	}
	msgType := env.GetFields()[fieldType].GetStringValue()
	if msgType == "" {
		return nil, ErrMissingType
	}

	msg := GetMessage()
	msg.Type = protocol.MessageType(msgType)
	if payload, ok := env.GetFields()[fieldPayload]; ok {
		raw, err := protojson.Marshal(payload)
		if err != nil {
			PutMessage(msg)
			return nil, err
		}
		msg.Payload = raw
	}
	return msg, nil
}

// ParsePayload 解析并校验消息的 Payload
func ParsePayload[T any](msg *protocol.Message) (*T, error) {
	var payload T
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidPayload, err)
		}
	}
	if err := validatePayload(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// NewErrorMessage 创建错误消息
func NewErrorMessage(code int) *protocol.Message {
	return NewErrorMessageWithText(code, protocol.ErrorMessages[code])
}

// NewErrorMessageWithText 创建带自定义文本的错误消息
func NewErrorMessageWithText(code int, text string) *protocol.Message {
	return MustNewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    code,
		Message: text,
	})
}

// NewGameErrorMessage 将错误转换为错误消息，非 GameError 使用未知错误码
func NewGameErrorMessage(err error) *protocol.Message {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		return NewErrorMessageWithText(gameErr.Code, gameErr.Message)
	}
	return NewErrorMessageWithText(protocol.ErrCodeUnknown, err.Error())
}
