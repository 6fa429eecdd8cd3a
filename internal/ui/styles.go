package ui

import "github.com/charmbracelet/lipgloss"

const (
	HostIcon   = "👑"
	WinnerIcon = "🏆"
	CursorIcon = "▶"
)

// diceFaces 点数对应的骰面，下标即点数
var diceFaces = [...]string{"·", "⚀", "⚁", "⚂", "⚃", "⚄", "⚅"}

var (
	docStyle     = lipgloss.NewStyle().Margin(1, 2)
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	promptStyle  = lipgloss.NewStyle().MarginTop(1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	dieStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("#FFFFFF")).
			Bold(true)

	heldDieStyle = dieStyle.
			BorderForeground(lipgloss.Color("214")).
			Background(lipgloss.Color("#FFD37A"))
)
