package transport

import (
	"time"

	"github.com/palemoky/yahtzee/internal/protocol"
	"github.com/palemoky/yahtzee/internal/protocol/codec"
)

// CreateRoom 创建房间，创建者仍需 JoinRoom
func (c *Client) CreateRoom() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgCreateRoom, nil))
}

// JoinRoom 加入房间
func (c *Client) JoinRoom(code, name string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		Code: code,
		Name: name,
	}))
}

// LeaveRoom 离开房间
func (c *Client) LeaveRoom(code string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgLeaveRoom, protocol.RoomPayload{Code: code}))
}

// StartGame 开始游戏（仅房主）
func (c *Client) StartGame(code string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgStartGame, protocol.RoomPayload{Code: code}))
}

// RollDice 掷骰
func (c *Client) RollDice(code string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgRollDice, protocol.RoomPayload{Code: code}))
}

// ToggleHold 切换一颗骰子的保留状态，value 为当前看到的点数
func (c *Client) ToggleHold(code string, index, value int) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgToggleHold, protocol.ToggleHoldPayload{
		Code:      code,
		DiceIndex: index,
		Value:     value,
	}))
}

// SelectScore 选择计分项
func (c *Client) SelectScore(code, category string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgSelectScore, protocol.SelectScorePayload{
		Code:     code,
		Category: category,
	}))
}

// GetRoomList 获取房间列表
func (c *Client) GetRoomList() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetRoomList, nil))
}

// GetLeaderboard 获取排行榜
func (c *Client) GetLeaderboard(board string, limit int) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{
		Type:  board,
		Limit: limit,
	}))
}

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}
