package dialog

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Yat-Muk/nylon-gui/internal/tui/style"
)

const defaultWidth = 64

// --- 確認框 ---

type confirmModel struct {
	title     string
	text      string
	focusNo   bool
	done      bool
	cancelled bool
	width     int
}

func newConfirmModel(title, text string) confirmModel {
	return confirmModel{title: title, text: text, width: defaultWidth}
}

// Yes 默認焦點在「是」
func (m confirmModel) Yes() bool {
	return !m.focusNo
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = min(msg.Width-6, defaultWidth)
	case tea.KeyMsg:
		switch msg.String() {
		case "left", "right", "h", "l", "tab", "shift+tab":
			m.focusNo = !m.focusNo
		case "y", "Y":
			m.focusNo = false
			m.done = true
			return m, tea.Quit
		case "n", "N":
			m.focusNo = true
			m.done = true
			return m, tea.Quit
		case "enter", " ":
			m.done = true
			return m, tea.Quit
		case "esc", "q", "ctrl+c":
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}

	yes, no := style.ButtonActiveStyle, style.ButtonStyle
	if m.focusNo {
		yes, no = no, yes
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top, yes.Render("是(Y)"), no.Render("否(N)"))

	body := lipgloss.JoinVertical(lipgloss.Left,
		style.TitleStyle.Render(m.title),
		"",
		lipgloss.NewStyle().Width(m.width).Render(m.text),
		"",
		buttons,
		style.HelpStyle.Render("←/→ 切換 • Enter 確認 • Esc 取消"),
	)
	return style.DialogStyle.Render(body)
}

// --- 消息框 ---

type messageModel struct {
	title   string
	text    string
	isError bool
	done    bool
	width   int
}

func newMessageModel(title, text string, isError bool) messageModel {
	return messageModel{title: title, text: text, isError: isError, width: defaultWidth}
}

func (m messageModel) Init() tea.Cmd {
	return nil
}

func (m messageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = min(msg.Width-6, defaultWidth)
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", " ", "esc", "q", "ctrl+c":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m messageModel) View() string {
	if m.done {
		return ""
	}

	frame, title := style.DialogStyle, style.TitleStyle.Render(m.title)
	if m.isError {
		frame = style.ErrorDialogStyle
		title = style.ErrorText(m.title)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		lipgloss.NewStyle().Width(m.width).Render(m.text),
		"",
		style.ButtonActiveStyle.Render("確定"),
	)
	return frame.Render(body)
}

// --- 文件選擇 ---

type pickerModel struct {
	title     string
	fp        filepicker.Model
	selected  string
	notice    string
	cancelled bool
	width     int
}

func newPickerModel(title, startDir string, exts []string) pickerModel {
	fp := filepicker.New()
	fp.CurrentDirectory = startDir
	fp.ShowHidden = false

	// 文件選擇器按後綴區分大小寫
	var allowed []string
	for _, ext := range exts {
		allowed = append(allowed, strings.ToLower(ext), strings.ToUpper(ext))
	}
	fp.AllowedTypes = allowed

	return pickerModel{title: title, fp: fp, width: defaultWidth}
}

func (m pickerModel) Init() tea.Cmd {
	return m.fp.Init()
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width - 6
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.fp, cmd = m.fp.Update(msg)

	if ok, path := m.fp.DidSelectFile(msg); ok {
		m.selected = path
		return m, tea.Quit
	}
	if ok, path := m.fp.DidSelectDisabledFile(msg); ok {
		m.notice = filepath.Base(path) + " 不是可執行文件"
	}
	return m, cmd
}

func (m pickerModel) View() string {
	if m.cancelled || m.selected != "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(style.TitleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(style.MutedText(style.TruncatePath(m.fp.CurrentDirectory, max(m.width, 20))))
	b.WriteString("\n\n")
	b.WriteString(m.fp.View())
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(style.WarningText(m.notice))
	}
	b.WriteString(style.HelpStyle.Render("↑/↓ 移動 • → 進入 • ← 返回 • Enter 選擇 • q 取消"))
	return b.String()
}

// --- 進度 ---

type doneMsg struct {
	err error
}

type progressModel struct {
	title   string
	spinner spinner.Model
	done    bool
	err     error
}

func newProgressModel(title string) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(style.Primary)
	return progressModel{title: title, spinner: s}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update 任務必須完成，忽略按鍵
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	return "\n " + m.spinner.View() + " " + m.title + "\n" + style.HelpStyle.Render("請勿關閉程序")
}
