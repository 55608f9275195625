package bootstrap

import (
	"github.com/Yat-Muk/nylon-gui/internal/domain/config"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/appctx"
)

// Session 啟動期間的顯式配置上下文，在各狀態之間以指針傳遞
// 只由主協程在啟動階段訪問，無需加鎖
type Session struct {
	Paths  *appctx.Paths
	GUI    *config.GUIConfig
	Loader *config.LoaderConfig

	// LoaderMissing 操作者拒絕安裝 Nylon 時進入的降級模式
	LoaderMissing bool
	// LoaderVersion 已安裝的 Nylon 版本，未知時為空
	LoaderVersion string
}

func NewSession(paths *appctx.Paths, gui *config.GUIConfig) *Session {
	return &Session{
		Paths: paths,
		GUI:   gui,
	}
}

// PathSet 根據當前遊戲目錄重新計算派生路徑
func (s *Session) PathSet() appctx.PathSet {
	return s.Paths.Resolve(s.GUI.GameDirectory)
}
