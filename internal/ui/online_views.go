package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/yahtzee/internal/game/rule"
	"github.com/palemoky/yahtzee/internal/protocol"
)

// --- 视图渲染 ---

func (m *OnlineModel) center(s string) string {
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, s)
}

// footer 提示信息和错误信息
func (m *OnlineModel) footer(sb *strings.Builder) {
	if m.notice != "" {
		sb.WriteString("\n" + m.center(noticeStyle.Render(m.notice)))
	}
	if m.error != "" {
		sb.WriteString("\n" + m.center(errorStyle.Render(m.error)))
	}
}

func (m *OnlineModel) connectingView() string {
	var sb strings.Builder
	sb.WriteString(m.center("🔌 正在连接服务器..."))
	m.footer(&sb)
	return docStyle.Render(sb.String())
}

func (m *OnlineModel) nameView() string {
	var sb strings.Builder
	sb.WriteString(m.center(titleStyle("🎲 Yahtzee 快艇骰子")))
	sb.WriteString("\n\n")
	sb.WriteString(m.center("请输入昵称，按 Enter 确认"))
	sb.WriteString("\n\n")
	sb.WriteString(m.center(m.input.View()))
	m.footer(&sb)
	return docStyle.Render(sb.String())
}

func (m *OnlineModel) lobbyView() string {
	var sb strings.Builder

	sb.WriteString(m.center(titleStyle("🎲 Yahtzee 快艇骰子")))
	sb.WriteString("\n\n")
	sb.WriteString(m.center(fmt.Sprintf("欢迎, %s!", m.state.PlayerName)))
	sb.WriteString("\n\n")

	menu := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		"请选择:",
		"",
		"  1. 创建房间",
		"  2. 刷新房间列表",
		"  3. 总排行榜",
		"  4. 今日排行榜",
		"",
		"  或直接输入 6 位房间号加入",
	))
	sb.WriteString(m.center(menu))
	sb.WriteString("\n\n")
	sb.WriteString(m.center(renderRoomList(m.state.Rooms)))
	sb.WriteString("\n\n")
	sb.WriteString(m.center(m.input.View()))
	m.footer(&sb)
	return docStyle.Render(sb.String())
}

func renderRoomList(rooms []protocol.RoomListItem) string {
	if len(rooms) == 0 {
		return dimStyle.Render("暂无房间")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-8s %6s %10s\n", "房间号", "人数", "状态"))
	for _, r := range rooms {
		sb.WriteString(fmt.Sprintf("%-8s %3d/%-2d %10s\n", r.Code, r.PlayerCount, r.MaxPlayers, phaseName(r.Phase)))
	}
	return boxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

func phaseName(phase string) string {
	switch phase {
	case "waiting":
		return "等待中"
	case "playing":
		return "游戏中"
	case "game_over":
		return "已结束"
	default:
		return phase
	}
}

func (m *OnlineModel) waitingView() string {
	var sb strings.Builder

	sb.WriteString(m.center(titleStyle("🏠 房间 " + m.state.RoomCode)))
	sb.WriteString("\n\n")

	lines := make([]string, 0, len(m.state.Players))
	for i, name := range m.state.Players {
		line := fmt.Sprintf("%d. %s", i+1, name)
		if name == m.state.Host {
			line += " " + HostIcon
		}
		if name == m.state.PlayerName {
			line = currentStyle.Render(line)
		}
		lines = append(lines, line)
	}
	sb.WriteString(m.center(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))))
	sb.WriteString("\n\n")

	hint := "等待房主开始游戏... [ESC] 离开"
	if m.state.IsHost {
		hint = "[S] 开始游戏  [ESC] 离开"
	}
	sb.WriteString(m.center(promptStyle.Render(hint)))
	m.footer(&sb)
	return docStyle.Render(sb.String())
}

func (m *OnlineModel) playingView() string {
	var sb strings.Builder

	turn := fmt.Sprintf("🎲 %s 的回合", m.state.CurrentName)
	if m.state.IsMyTurn() {
		turn = "🎲 轮到你了"
	}
	sb.WriteString(m.center(titleStyle(turn)))
	sb.WriteString("\n\n")
	sb.WriteString(m.center(renderDice(m.state.Dice, m.state.Held)))
	sb.WriteString("\n")
	sb.WriteString(m.center(fmt.Sprintf("剩余掷骰次数: %d", m.state.RollsLeft)))
	sb.WriteString("\n\n")
	sb.WriteString(m.center(m.renderScorecard()))
	sb.WriteString("\n")

	hint := "[R] 掷骰  [1-5] 保留/取消  [↑↓] 选择  [Enter] 记分  [ESC] 离开"
	sb.WriteString(m.center(promptStyle.Render(hint)))
	m.footer(&sb)
	return docStyle.Render(sb.String())
}

// renderDice 五颗骰子，保留的骰子高亮
func renderDice(values []int, held []bool) string {
	dice := make([]string, 0, len(values))
	for i, v := range values {
		face := diceFaces[0]
		if v >= 1 && v < len(diceFaces) {
			face = fmt.Sprintf("%s %d", diceFaces[v], v)
		}
		style := dieStyle
		if i < len(held) && held[i] {
			style = heldDieStyle
		}
		dice = append(dice, lipgloss.JoinVertical(lipgloss.Center, style.Render(face), dimStyle.Render(fmt.Sprintf("%d", i+1))))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, dice...)
}

// renderScorecard 所有玩家的记分卡，当前玩家未记录的项显示可得分
func (m *OnlineModel) renderScorecard() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("  %-8s", "计分项"))
	for _, name := range m.state.Players {
		sb.WriteString(fmt.Sprintf(" %8s", truncateName(name, 8)))
	}
	sb.WriteString("\n")

	for i, c := range rule.Categories {
		marker := " "
		if i == m.cursor {
			marker = CursorIcon
		}
		sb.WriteString(fmt.Sprintf("%s %-8s", marker, c.String()))

		for _, name := range m.state.Players {
			sb.WriteString(" " + m.scoreCell(name, string(c)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("  %-8s", "小计/奖励"))
	for _, name := range m.state.Players {
		card := m.state.Scorecards[name]
		sb.WriteString(fmt.Sprintf(" %8s", fmt.Sprintf("%d/%d", card.UpperSubtotal, card.Bonus)))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  %-8s", "总分"))
	for _, name := range m.state.Players {
		sb.WriteString(fmt.Sprintf(" %8d", m.state.Scorecards[name].Total))
	}
	return boxStyle.Render(sb.String())
}

func (m *OnlineModel) scoreCell(name, category string) string {
	if v, ok := m.state.Scorecards[name].Scores[category]; ok {
		return fmt.Sprintf("%8d", v)
	}
	if name == m.state.CurrentName {
		if v, ok := m.state.Possible[category]; ok {
			return currentStyle.Render(fmt.Sprintf("%8s", fmt.Sprintf("(%d)", v)))
		}
	}
	return dimStyle.Render(fmt.Sprintf("%8s", "-"))
}

func (m *OnlineModel) gameOverView() string {
	var sb strings.Builder
	result := m.state.Result

	title := "🏁 游戏结束"
	if result != nil && result.WinnerName != "" {
		title = fmt.Sprintf("%s %s 获胜！(%d 分)", WinnerIcon, result.WinnerName, result.WinnerScore)
	}
	sb.WriteString(m.center(titleStyle(title)))
	sb.WriteString("\n\n")

	if result != nil {
		lines := make([]string, 0, len(result.Standings))
		for _, st := range result.Standings {
			line := fmt.Sprintf("%-12s %4d", truncateName(st.Name, 12), st.Total)
			if st.PlayerID == result.WinnerID {
				line = currentStyle.Render(line + " " + WinnerIcon)
			}
			lines = append(lines, line)
		}
		sb.WriteString(m.center(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))))
		sb.WriteString("\n")
	}

	sb.WriteString(m.center(promptStyle.Render("[Enter] 返回大厅")))
	m.footer(&sb)
	return docStyle.Render(sb.String())
}

func (m *OnlineModel) leaderboardView() string {
	var sb strings.Builder

	title := "🏆 总排行榜"
	if m.state.LeaderboardType == boardDaily {
		title = "🏆 今日排行榜"
	}
	sb.WriteString(m.center(titleStyle(title)))
	sb.WriteString("\n\n")
	sb.WriteString(m.center(renderLeaderboard(m.state.Leaderboard)))
	sb.WriteString("\n")
	sb.WriteString(m.center(promptStyle.Render("[T] 总榜  [D] 今日  [ESC] 返回")))
	m.footer(&sb)
	return docStyle.Render(sb.String())
}

// renderLeaderboard 渲染排行榜
func renderLeaderboard(entries []protocol.LeaderboardEntry) string {
	if len(entries) == 0 {
		return dimStyle.Render("暂无记录")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-4s %-12s %6s %6s %6s %8s\n", "排名", "玩家", "最高分", "局数", "胜场", "胜率"))
	sb.WriteString(strings.Repeat("─", 50) + "\n")
	for _, e := range entries {
		var rankIcon string
		switch e.Rank {
		case 1:
			rankIcon = "🥇"
		case 2:
			rankIcon = "🥈"
		case 3:
			rankIcon = "🥉"
		default:
			rankIcon = fmt.Sprintf("%2d.", e.Rank)
		}
		sb.WriteString(fmt.Sprintf("%-4s %-12s %6d %6d %6d %7.1f%%\n",
			rankIcon, truncateName(e.PlayerName, 12), e.BestScore, e.Games, e.Wins, e.WinRate))
	}
	return boxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

// truncateName 截断过长的昵称
func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) > maxLen {
		return string(runes[:maxLen-1]) + "…"
	}
	return name
}
