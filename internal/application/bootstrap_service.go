package application

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/Yat-Muk/nylon-gui/internal/domain/bootstrap"
	"github.com/Yat-Muk/nylon-gui/internal/domain/config"
	"github.com/Yat-Muk/nylon-gui/internal/infra/elevation"
	"github.com/Yat-Muk/nylon-gui/internal/infra/update"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/appctx"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/errors"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/logger"
)

// BootstrapDeps 啟動服務的依賴
type BootstrapDeps struct {
	Fs          afero.Fs
	Paths       *appctx.Paths
	GUIStore    ConfigStore[config.GUIConfig]
	LoaderStore LoaderStoreFactory
	Locator     GameLocator
	Permission  PermissionChecker
	Elevator    Elevator
	Updater     Updater
	Prompter    Prompter
	GUI         GUI
	Args        ArgumentHandler
	Temp        TempManager
}

// BootstrapService 啟動狀態機
// 在交互界面出現之前依次完成目錄定位、權限檢查、Nylon 安裝與配置加載
type BootstrapService struct {
	fs          afero.Fs
	paths       *appctx.Paths
	guiStore    ConfigStore[config.GUIConfig]
	loaderStore LoaderStoreFactory
	locator     GameLocator
	permission  PermissionChecker
	elevator    Elevator
	updater     Updater
	prompter    Prompter
	gui         GUI
	args        ArgumentHandler
	temp        TempManager
	migrator    *config.Migrator
	logger      *zap.Logger
}

// NewBootstrapService 創建啟動服務
func NewBootstrapService(deps BootstrapDeps, logger *zap.Logger) *BootstrapService {
	return &BootstrapService{
		fs:          deps.Fs,
		paths:       deps.Paths,
		guiStore:    deps.GUIStore,
		loaderStore: deps.LoaderStore,
		locator:     deps.Locator,
		permission:  deps.Permission,
		elevator:    deps.Elevator,
		updater:     deps.Updater,
		prompter:    deps.Prompter,
		gui:         deps.GUI,
		args:        deps.Args,
		temp:        deps.Temp,
		migrator:    config.NewMigrator(),
		logger:      logger,
	}
}

// Run 執行完整的進程生命週期並返回退出碼
// 臨時目錄在任何退出路徑上都會被清理
func (s *BootstrapService) Run(ctx context.Context, args []string) bootstrap.ExitCode {
	defer s.temp.Cleanup()
	if err := s.temp.Init(); err != nil {
		s.logger.Warn("初始化臨時目錄失敗", zap.Error(err))
	}

	gui, err := s.LoadGUIConfig(ctx)
	if err != nil {
		s.logger.Error("加載應用配置失敗", zap.Error(err))
		s.report(ctx, "配置錯誤", fmt.Sprintf("無法加載 %s:\n%v", s.guiStore.Path(), err))
		return bootstrap.ExitFailure
	}

	s.updater.SetPrerelease(gui.UpdateChannel == config.ChannelPrerelease)
	session := bootstrap.NewSession(s.paths, gui)

	if len(args) > 0 {
		s.logger.Info("帶參數啟動，跳過交互流程", zap.Strings("args", args))
		code := s.args.Handle(ctx, session, args)
		s.logger.Info("參數處理完成", zap.Stringer("code", code))
		return code
	}

	res := s.Bootstrap(ctx, session)
	s.logger.Info("啟動流程結束", zap.Stringer("result", res))
	if res.Outcome != bootstrap.OutcomeLaunchGUI {
		return res.Code
	}

	if err := s.gui.Run(ctx, session); err != nil {
		s.logger.Error("主窗口異常退出", zap.Error(err))
		s.report(ctx, "界面錯誤", err.Error())
		return bootstrap.ExitFailure
	}
	return bootstrap.ExitSuccess
}

// LoadGUIConfig 首次運行先寫入默認設置，然後加載並遷移
func (s *BootstrapService) LoadGUIConfig(ctx context.Context) (*config.GUIConfig, error) {
	if !s.guiStore.Exists() {
		s.logger.Info("應用配置不存在，寫入默認值", logger.Path("path", s.guiStore.Path()))
		if err := s.guiStore.Write(ctx, config.DefaultGUIConfig()); err != nil {
			return nil, fmt.Errorf("寫入默認配置失敗: %w", err)
		}
	}

	cfg, err := s.guiStore.Read(ctx)
	if err != nil {
		return nil, err
	}

	if !s.migrator.NeedsMigration(cfg) {
		return cfg, nil
	}

	oldVersion := cfg.ConfigVersion
	migrated, err := s.migrator.MigrateGUI(cfg)
	if err != nil {
		return nil, fmt.Errorf("遷移失敗: %w", err)
	}
	if err := s.guiStore.Write(ctx, migrated); err != nil {
		return nil, fmt.Errorf("保存遷移後配置失敗: %w", err)
	}

	s.logger.Info("應用配置遷移完成",
		zap.Int("old_version", oldVersion),
		zap.Int("new_version", migrated.ConfigVersion),
	)
	return migrated, nil
}

// Bootstrap 依次執行目錄定位到 Nylon 配置加載的各個狀態
// 每次調用恰好產生一個終態結果
func (s *BootstrapService) Bootstrap(ctx context.Context, session *bootstrap.Session) bootstrap.Result {
	state := bootstrap.StateDirectoryResolution
	for {
		s.logger.Debug("進入啟動狀態", zap.Stringer("state", state))

		if state == bootstrap.StateLaunch {
			return bootstrap.LaunchGUI()
		}

		if res, done := s.step(ctx, state, session); done {
			return res
		}

		next, ok := state.Next()
		if !ok {
			return bootstrap.LaunchGUI()
		}
		state = next
	}
}

// step 執行單個狀態，done 為 true 時 res 即為終態
func (s *BootstrapService) step(ctx context.Context, state bootstrap.State, session *bootstrap.Session) (res bootstrap.Result, done bool) {
	switch state {
	case bootstrap.StateDirectoryResolution:
		return s.resolveDirectory(ctx, session)
	case bootstrap.StatePermissionGate:
		return s.permissionGate(ctx, session)
	case bootstrap.StateModLoaderDetection:
		return s.detectModLoader(ctx, session)
	case bootstrap.StateModsDirectoryEnsure:
		return s.ensureModsDirectory(ctx, session)
	case bootstrap.StateModLoaderConfigLoad:
		return s.loadLoaderConfig(ctx, session)
	default:
		return bootstrap.Failed(state, bootstrap.ExitFailure, fmt.Errorf("未知的啟動狀態: %s", state)), true
	}
}

func (s *BootstrapService) resolveDirectory(ctx context.Context, session *bootstrap.Session) (bootstrap.Result, bool) {
	state := bootstrap.StateDirectoryResolution

	set, changed, err := s.locator.ResolveGameDirectory(ctx, session.GUI)
	if err != nil {
		s.logger.Warn("未能確定遊戲目錄", zap.Error(err))
		return bootstrap.Cancelled(state), true
	}

	if changed {
		// 保存失敗只意味著下次啟動需要重新選擇
		if err := s.guiStore.Write(ctx, session.GUI); err != nil {
			s.logger.Warn("保存遊戲目錄失敗", zap.Error(err))
		}
	}

	s.logger.Info("遊戲目錄已確定", logger.Path("dir", set.GameDir), zap.Bool("changed", changed))
	return bootstrap.Result{}, false
}

func (s *BootstrapService) permissionGate(ctx context.Context, session *bootstrap.Session) (bootstrap.Result, bool) {
	state := bootstrap.StatePermissionGate
	dir := session.PathSet().GameDir

	if s.permission.CanWriteToTargetDirectory(dir) {
		return bootstrap.Result{}, false
	}

	s.logger.Info("沒有遊戲目錄的寫入權限", logger.Path("dir", dir))

	ok, err := s.prompter.Confirm(ctx, "需要權限",
		fmt.Sprintf("Nylon GUI 無法寫入遊戲目錄:\n%s\n\n是否以管理員身份授予訪問權限？", dir))
	if err != nil {
		s.logger.Warn("權限提示未完成，按拒絕處理", zap.Error(err))
	}
	if err != nil || !ok {
		return bootstrap.Cancelled(state), true
	}

	code, err := s.elevator.RelaunchElevated(ctx, elevation.SetAccessMarker)
	if err != nil {
		s.logger.Error("提權失敗", zap.Error(err))
		s.report(ctx, "提權失敗", err.Error())
		return bootstrap.Failed(state, bootstrap.ExitPrivilegeNotHeld, err), true
	}
	if bootstrap.ExitCode(code) != bootstrap.ExitSuccess {
		err := fmt.Errorf("授權進程退出碼 %s", bootstrap.ExitCode(code))
		s.logger.Error("授權進程未成功", zap.Int("code", code))
		s.report(ctx, "提權失敗", err.Error())
		return bootstrap.Failed(state, bootstrap.ExitPrivilegeNotHeld, err), true
	}

	// 交由提權後的實例完成授權，本進程退出
	s.logger.Info("授權進程已完成")
	return bootstrap.Cancelled(state), true
}

func (s *BootstrapService) detectModLoader(ctx context.Context, session *bootstrap.Session) (bootstrap.Result, bool) {
	state := bootstrap.StateModLoaderDetection
	set := session.PathSet()

	exists, err := afero.DirExists(s.fs, set.ModLoaderDir)
	if err != nil {
		s.logger.Warn("檢查 Nylon 目錄失敗，按不存在處理", zap.Error(err))
	}
	if exists {
		session.LoaderVersion = s.updater.InstalledVersion(set)
		if session.GUI.CheckForUpdates {
			return s.offerUpdate(ctx, session)
		}
		return bootstrap.Result{}, false
	}

	if err := s.fs.MkdirAll(set.ModLoaderDir, 0755); err != nil {
		s.logger.Error("創建 Nylon 目錄失敗", zap.Error(err))
		s.report(ctx, "目錄錯誤", err.Error())
		return bootstrap.Failed(state, bootstrap.ExitFailure, err), true
	}
	s.logger.Info("已創建 Nylon 目錄", logger.Path("dir", set.ModLoaderDir))

	ok, err := s.prompter.Confirm(ctx, "未檢測到 Nylon", "Nylon 尚未安裝，是否立即下載並安裝？")
	if err != nil {
		s.logger.Warn("安裝提示未完成，按拒絕處理", zap.Error(err))
	}
	if err != nil || !ok {
		s.logger.Warn("操作者拒絕安裝 Nylon，進入降級模式")
		session.LoaderMissing = true
		return bootstrap.Result{}, false
	}

	if err := s.install(ctx, set); err != nil {
		s.logger.Error("安裝 Nylon 失敗", zap.Error(err))
		s.report(ctx, "安裝失敗", err.Error())
		return bootstrap.Failed(state, bootstrap.ExitFailure, err), true
	}

	session.LoaderVersion = s.updater.InstalledVersion(set)
	return bootstrap.Result{}, false
}

// offerUpdate 已安裝時的例行檢查，檢查失敗不影響啟動
func (s *BootstrapService) offerUpdate(ctx context.Context, session *bootstrap.Session) (bootstrap.Result, bool) {
	state := bootstrap.StateModLoaderDetection
	set := session.PathSet()

	var status *update.UpdateStatus
	err := s.prompter.Progress(ctx, "正在檢查更新", func(ctx context.Context) error {
		var err error
		status, err = s.updater.CheckForUpdates(ctx, set)
		return err
	})
	if err != nil {
		s.logger.Warn("檢查更新失敗", zap.Error(err))
		return bootstrap.Result{}, false
	}
	if status.State != update.UpdateAvailable {
		return bootstrap.Result{}, false
	}

	ok, err := s.prompter.Confirm(ctx, "發現新版本",
		fmt.Sprintf("Nylon %s 可用（當前 %s），是否立即更新？", status.Latest.Original(), session.LoaderVersion))
	if err != nil || !ok {
		s.logger.Info("操作者跳過更新", zap.Stringer("status", status))
		return bootstrap.Result{}, false
	}

	if err := s.install(ctx, set); err != nil {
		s.logger.Error("更新 Nylon 失敗", zap.Error(err))
		s.report(ctx, "更新失敗", err.Error())
		return bootstrap.Failed(state, bootstrap.ExitFailure, err), true
	}

	session.LoaderVersion = s.updater.InstalledVersion(set)
	return bootstrap.Result{}, false
}

// install 在後台協程完成檢查與安裝並同步等待
func (s *BootstrapService) install(ctx context.Context, set appctx.PathSet) error {
	return s.prompter.Progress(ctx, "正在安裝 Nylon", func(ctx context.Context) error {
		status, err := s.updater.CheckForUpdates(ctx, set)
		if err != nil {
			return fmt.Errorf("檢查更新失敗: %w", err)
		}
		s.logger.Info("更新檢查完成", zap.Stringer("status", status))
		if err := s.updater.InstallUpdate(ctx, set); err != nil {
			return fmt.Errorf("安裝更新失敗: %w", err)
		}
		return nil
	})
}

func (s *BootstrapService) ensureModsDirectory(ctx context.Context, session *bootstrap.Session) (bootstrap.Result, bool) {
	state := bootstrap.StateModsDirectoryEnsure
	dir := session.PathSet().ModsDir

	exists, _ := afero.DirExists(s.fs, dir)
	if exists {
		return bootstrap.Result{}, false
	}

	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		s.logger.Error("創建 mods 目錄失敗", zap.Error(err))
		s.report(ctx, "目錄錯誤", err.Error())
		return bootstrap.Failed(state, bootstrap.ExitFailure, err), true
	}
	s.logger.Info("已創建 mods 目錄", logger.Path("dir", dir))
	return bootstrap.Result{}, false
}

func (s *BootstrapService) loadLoaderConfig(ctx context.Context, session *bootstrap.Session) (bootstrap.Result, bool) {
	state := bootstrap.StateModLoaderConfigLoad

	// 降級模式下只在內存中使用默認值
	if session.LoaderMissing {
		session.Loader = config.DefaultLoaderConfig()
		return bootstrap.Result{}, false
	}

	store := s.loaderStore(session.PathSet().LoaderConfigFile)
	if !store.Exists() {
		s.logger.Info("Nylon 配置不存在，寫入默認值", logger.Path("path", store.Path()))
		if err := store.Write(ctx, config.DefaultLoaderConfig()); err != nil {
			s.logger.Error("寫入 Nylon 配置失敗", zap.Error(err))
			s.report(ctx, "配置錯誤", err.Error())
			return bootstrap.Failed(state, bootstrap.ExitFailure, err), true
		}
	}

	cfg, err := store.Read(ctx)
	switch {
	case err == nil:
		session.Loader = cfg
	case stderrors.Is(err, errors.ErrConfigParseFailed), stderrors.Is(err, errors.ErrConfigInvalid):
		// 不覆蓋操作者手動編輯的文件
		s.logger.Warn("Nylon 配置無效，使用默認值", zap.Error(err))
		s.report(ctx, "配置無效", fmt.Sprintf("%s 無法解析，本次使用默認設置。\n%v", store.Path(), err))
		session.Loader = config.DefaultLoaderConfig()
	default:
		s.logger.Error("讀取 Nylon 配置失敗", zap.Error(err))
		s.report(ctx, "配置錯誤", err.Error())
		return bootstrap.Failed(state, bootstrap.ExitFailure, err), true
	}

	return bootstrap.Result{}, false
}

// report 盡力向操作者顯示錯誤，無終端時只記錄日誌
func (s *BootstrapService) report(ctx context.Context, title, text string) {
	if err := s.prompter.Error(ctx, title, text); err != nil {
		s.logger.Debug("無法顯示錯誤提示", zap.Error(err))
	}
}
