package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// TextColor 返回一個使用指定前景色的 Render 函數。
func TextColor(c lipgloss.Color) func(string) string {
	s := lipgloss.NewStyle().Foreground(c)
	return func(str string) string {
		return s.Render(str)
	}
}

// InfoText 使用 Info 顏色顯示文字。
func InfoText(s string) string {
	return TextColor(Info)(s)
}

// SuccessText 使用 Success 顏色顯示文字。
func SuccessText(s string) string {
	return TextColor(Success)(s)
}

// WarningText 使用 Warning 顏色顯示文字。
func WarningText(s string) string {
	return TextColor(Warning)(s)
}

// ErrorText 使用 Error 顏色顯示文字。
func ErrorText(s string) string {
	return TextColor(Error)(s)
}

// MutedText 使用 Muted 顏色顯示文字。
func MutedText(s string) string {
	return TextColor(Muted)(s)
}

// VisualLength 字符串在等寬終端中的可視寬度，CJK 字符按 2 計
func VisualLength(s string) int {
	return runewidth.StringWidth(s)
}

// TruncatePath 從左側截斷過長的路徑，保留文件名一端
func TruncatePath(p string, width int) string {
	if width <= 1 || runewidth.StringWidth(p) <= width {
		return p
	}
	rs := []rune(p)
	for i := range rs {
		tail := string(rs[i:])
		if runewidth.StringWidth(tail)+3 <= width {
			return "..." + tail
		}
	}
	return "..."
}
