package style

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// 標題樣式
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// 對話框外框
	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2).
			Margin(1, 2)

	// 錯誤對話框外框
	ErrorDialogStyle = DialogStyle.
				BorderForeground(Error)

	// 按鈕樣式
	ButtonStyle = lipgloss.NewStyle().
			Foreground(Text).
			Padding(0, 2).
			Margin(0, 1)

	ButtonActiveStyle = lipgloss.NewStyle().
				Foreground(BgDark).
				Background(Primary).
				Padding(0, 2).
				Margin(0, 1).
				Bold(true)

	// 幫助樣式
	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(1, 1, 0, 1)

	// 面板樣式
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 1)

	// 徽章樣式
	BadgeSuccessStyle = lipgloss.NewStyle().
				Foreground(BgDark).
				Background(Success).
				Padding(0, 1).
				Bold(true)

	BadgeWarningStyle = lipgloss.NewStyle().
				Foreground(BgDark).
				Background(Warning).
				Padding(0, 1).
				Bold(true)

	BadgeErrorStyle = lipgloss.NewStyle().
			Foreground(Text).
			Background(Error).
			Padding(0, 1).
			Bold(true)
)

// RenderBadge 渲染徽章
func RenderBadge(text string, badgeType string) string {
	switch badgeType {
	case "success":
		return BadgeSuccessStyle.Render(text)
	case "error":
		return BadgeErrorStyle.Render(text)
	case "warning":
		return BadgeWarningStyle.Render(text)
	default:
		return text
	}
}
