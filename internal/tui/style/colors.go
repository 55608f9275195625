package style

import "github.com/charmbracelet/lipgloss"

// 配色方案
var (
	// 主色調
	FutureGreen = lipgloss.Color("#B2FF00") // 螢光綠 - 成功/已安裝
	SkyBlue     = lipgloss.Color("#1AAEFC") // 天藍 - 主要強調
	Violet      = lipgloss.Color("#DDAAFF") // 紫羅蘭 - 次要強調
	Yellow      = lipgloss.Color("#FFDC65") // 明黃 - 警告
	Red         = lipgloss.Color("#FF007F") // 紅色 - 錯誤

	// 文字顏色
	White    = lipgloss.Color("#F3F3F0")
	Gray     = lipgloss.Color("#C0C0C0")
	DarkGray = lipgloss.Color("#8A8783")

	BgDark = lipgloss.Color("#1a1a1a")
)

// 功能顏色映射
var (
	Primary   = SkyBlue
	Secondary = Violet
	Text      = White

	Muted   = DarkGray
	Success = FutureGreen
	Error   = Red
	Warning = Yellow
	Info    = SkyBlue
)
