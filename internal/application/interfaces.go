package application

import (
	"context"

	"github.com/Yat-Muk/nylon-gui/internal/domain/bootstrap"
	"github.com/Yat-Muk/nylon-gui/internal/domain/config"
	"github.com/Yat-Muk/nylon-gui/internal/infra/update"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/appctx"
)

// ConfigStore 單個配置文檔的持久化
type ConfigStore[T any] interface {
	Path() string
	Exists() bool
	Read(ctx context.Context) (*T, error)
	Write(ctx context.Context, doc *T) error
}

// LoaderStoreFactory 按路徑打開 Nylon 配置，遊戲目錄在啟動中可能改變
type LoaderStoreFactory func(path string) ConfigStore[config.LoaderConfig]

// GameLocator 定位遊戲目錄
type GameLocator interface {
	ResolveGameDirectory(ctx context.Context, cfg *config.GUIConfig) (appctx.PathSet, bool, error)
}

// PermissionChecker 目錄寫入權限探測
type PermissionChecker interface {
	CanWriteToTargetDirectory(dir string) bool
}

// Elevator 以管理員權限重新啟動自身
type Elevator interface {
	RelaunchElevated(ctx context.Context, marker string) (int, error)
}

// Updater Nylon 的檢查與安裝
type Updater interface {
	CheckForUpdates(ctx context.Context, target appctx.PathSet) (*update.UpdateStatus, error)
	InstallUpdate(ctx context.Context, target appctx.PathSet) error
	InstalledVersion(target appctx.PathSet) string
	SetPrerelease(enabled bool)
}

// Prompter 模態提示
type Prompter interface {
	Confirm(ctx context.Context, title, text string) (bool, error)
	Message(ctx context.Context, title, text string) error
	Error(ctx context.Context, title, text string) error
	Progress(ctx context.Context, title string, work func(context.Context) error) error
}

// GUI 啟動完成後的交互界面
type GUI interface {
	Run(ctx context.Context, s *bootstrap.Session) error
}

// ArgumentHandler 帶參數啟動時的非交互路徑
type ArgumentHandler interface {
	Handle(ctx context.Context, s *bootstrap.Session, args []string) bootstrap.ExitCode
}

// TempManager 進程級臨時目錄
type TempManager interface {
	Init() error
	Cleanup()
}
