package main

import (
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/Yat-Muk/nylon-gui/internal/application"
	"github.com/Yat-Muk/nylon-gui/internal/domain/config"
	infraConfig "github.com/Yat-Muk/nylon-gui/internal/infra/config"
	"github.com/Yat-Muk/nylon-gui/internal/infra/elevation"
	"github.com/Yat-Muk/nylon-gui/internal/infra/locator"
	"github.com/Yat-Muk/nylon-gui/internal/infra/mods"
	"github.com/Yat-Muk/nylon-gui/internal/infra/permission"
	infraSystem "github.com/Yat-Muk/nylon-gui/internal/infra/system"
	"github.com/Yat-Muk/nylon-gui/internal/infra/temp"
	"github.com/Yat-Muk/nylon-gui/internal/infra/update"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/appctx"
	"github.com/Yat-Muk/nylon-gui/internal/tui/dialog"
	"github.com/Yat-Muk/nylon-gui/internal/tui/model"
)

type AppDependencies struct {
	Log       *zap.Logger
	Paths     *appctx.Paths
	Bootstrap *application.BootstrapService
}

func initializeDependencies(log *zap.Logger, paths *appctx.Paths, env appctx.Environment) *AppDependencies {
	// ==========================================
	// 1. 基礎設施層 (Infrastructure Layer)
	// ==========================================

	fs := afero.NewOsFs()
	executor := infraSystem.NewExecutor(log)

	probe := permission.NewSystemProbe(log)
	granter := permission.NewGranter(executor, log)
	launcher := elevation.NewLauncher(executor, log)

	prompter := dialog.NewPrompter(log)
	gameLocator := locator.New(fs, prompter, paths, log)
	tempMgr := temp.NewManager(fs, paths.TempRoot, log)

	guiRepo := infraConfig.NewFileRepository[config.GUIConfig](fs, paths.GUIConfigFile, log)
	loaderRepo := func(path string) application.ConfigStore[config.LoaderConfig] {
		return infraConfig.NewFileRepository[config.LoaderConfig](fs, path, log)
	}

	updateCfg := update.DefaultConfig()
	updateCfg.APIBase = env.UpdateAPI
	updateCfg.Token = env.GitHubToken
	updater := update.NewCoordinator(fs, nil, tempMgr, updateCfg, log)

	// ==========================================
	// 2. 應用服務層 (Application Layer)
	// ==========================================

	accessSvc := application.NewAccessService(fs, probe, granter, log)
	router := newArgRouter(accessSvc, updater, fs, paths, os.Stdout, os.Stderr, log)

	// ==========================================
	// 3. 界面 (TUI)
	// ==========================================

	window := model.NewWindow(mods.NewCatalog(fs), log)

	bootstrapSvc := application.NewBootstrapService(application.BootstrapDeps{
		Fs:          fs,
		Paths:       paths,
		GUIStore:    guiRepo,
		LoaderStore: loaderRepo,
		Locator:     gameLocator,
		Permission:  probe,
		Elevator:    launcher,
		Updater:     updater,
		Prompter:    prompter,
		GUI:         window,
		Args:        router,
		Temp:        tempMgr,
	}, log)

	return &AppDependencies{
		Log:       log,
		Paths:     paths,
		Bootstrap: bootstrapSvc,
	}
}
