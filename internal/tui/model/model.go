package model

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Yat-Muk/nylon-gui/internal/domain/config"
	"github.com/Yat-Muk/nylon-gui/internal/infra/mods"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/version"
	"github.com/Yat-Muk/nylon-gui/internal/tui/style"
)

// headerHeight 標題與信息區佔用的行數
const headerHeight = 7

// ModLister 列出 mods 目錄中的模組
type ModLister interface {
	List(dir string, cfg *config.LoaderConfig) ([]mods.Mod, error)
}

// Info 主窗口顯示的安裝信息
type Info struct {
	GameDir       string
	ModsDir       string
	SaveDir       string
	LoaderVersion string
	LoaderMissing bool
}

type scanMsg struct {
	mods []mods.Mod
	err  error
}

// Model 主窗口模型
type Model struct {
	info   Info
	loader *config.LoaderConfig
	lister ModLister

	mods    []mods.Mod
	scanErr error

	vp     viewport.Model
	ready  bool
	width  int
	height int
}

// NewModel 創建主窗口模型
func NewModel(info Info, loader *config.LoaderConfig, lister ModLister) *Model {
	return &Model{
		info:   info,
		loader: loader,
		lister: lister,
		width:  80,
		height: 24,
	}
}

// Init 初始化時掃描一次
func (m *Model) Init() tea.Cmd {
	return m.scanCmd()
}

func (m *Model) scanCmd() tea.Cmd {
	dir, loader, lister := m.info.ModsDir, m.loader, m.lister
	return func() tea.Msg {
		list, err := lister.List(dir, loader)
		return scanMsg{mods: list, err: err}
	}
}

// Update 更新循環
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		bodyHeight := max(m.height-headerHeight-2, 3)
		if !m.ready {
			m.vp = viewport.New(m.width, bodyHeight)
			m.ready = true
		} else {
			m.vp.Width = m.width
			m.vp.Height = bodyHeight
		}
		m.vp.SetContent(m.renderMods())
		return m, nil

	case scanMsg:
		m.mods, m.scanErr = msg.mods, msg.err
		if m.ready {
			m.vp.SetContent(m.renderMods())
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.scanCmd()
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View 渲染視圖
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(style.TitleStyle.Render(version.Info()))
	b.WriteString("\n")

	status := style.RenderBadge("Nylon "+m.info.LoaderVersion, "success")
	switch {
	case m.info.LoaderMissing:
		status = style.RenderBadge("未安裝 Nylon", "warning")
	case m.info.LoaderVersion == "":
		status = style.RenderBadge("Nylon 版本未知", "warning")
	}
	b.WriteString(" " + status + "\n\n")

	width := max(m.width-12, 20)
	fmt.Fprintf(&b, " %s %s\n", style.MutedText("遊戲目錄"), style.TruncatePath(m.info.GameDir, width))
	fmt.Fprintf(&b, " %s %s\n", style.MutedText("存檔目錄"), style.TruncatePath(m.info.SaveDir, width))
	fmt.Fprintf(&b, " %s %s\n", style.MutedText("模組數量"), fmt.Sprint(len(m.mods)))

	if m.ready {
		b.WriteString(m.vp.View())
	} else {
		b.WriteString(m.renderMods())
	}

	b.WriteString(style.HelpStyle.Render("↑/↓ 滾動 • r 重新掃描 • q 退出"))
	return b.String()
}

func (m *Model) renderMods() string {
	if m.scanErr != nil {
		return style.ErrorText("掃描模組失敗: " + m.scanErr.Error())
	}
	if len(m.mods) == 0 {
		return style.MutedText(" mods 目錄為空")
	}

	nameWidth := 0
	for _, mod := range m.mods {
		nameWidth = max(nameWidth, style.VisualLength(mod.Name))
	}

	var lines []string
	for _, mod := range m.mods {
		mark := style.SuccessText("●")
		if !mod.Enabled {
			mark = style.MutedText("○")
		}
		pad := strings.Repeat(" ", nameWidth-style.VisualLength(mod.Name))
		lines = append(lines, fmt.Sprintf(" %s %s%s  %s", mark, mod.Name, pad, style.MutedText(humanize.Bytes(uint64(mod.Size)))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
