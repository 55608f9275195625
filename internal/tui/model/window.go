package model

import (
	"context"
	"fmt"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Yat-Muk/nylon-gui/internal/domain/bootstrap"
)

// Window 啟動流程結束後的交互主窗口
type Window struct {
	lister ModLister
	log    *zap.Logger
}

func NewWindow(lister ModLister, log *zap.Logger) *Window {
	return &Window{
		lister: lister,
		log:    log,
	}
}

// Run 阻塞直到操作者退出主窗口
func (w *Window) Run(ctx context.Context, s *bootstrap.Session) (err error) {
	set := s.PathSet()
	info := Info{
		GameDir:       set.GameDir,
		ModsDir:       set.ModsDir,
		SaveDir:       set.SaveDir,
		LoaderVersion: s.LoaderVersion,
		LoaderMissing: s.LoaderMissing,
	}

	p := tea.NewProgram(
		NewModel(info, s.Loader, w.lister),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	// 崩潰保護
	defer func() {
		if r := recover(); r != nil {
			p.ReleaseTerminal()
			w.log.Error("Panic", zap.Any("error", r), zap.String("stack", string(debug.Stack())))
			err = fmt.Errorf("界面崩潰: %v", r)
		}
	}()

	w.log.Info("主窗口已啟動")
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("主窗口運行錯誤: %w", err)
	}
	w.log.Info("主窗口已關閉")
	return nil
}
