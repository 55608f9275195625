package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"go.uber.org/zap"

	"github.com/Yat-Muk/nylon-gui/internal/domain/bootstrap"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/appctx"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/logger"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) (code int) {
	// 1. 環境初始化
	env := appctx.LoadEnvironment()
	paths, err := appctx.NewPaths(env.WorkDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "致命錯誤: 無法初始化路徑: %v\n", err)
		return int(bootstrap.ExitFailure)
	}

	// 交互模式下終端由界面佔用
	interactive := len(args) == 0
	if interactive {
		redirectStdErr(filepath.Join(paths.LogDir, "stderr.log"))
	}

	logConfig := logger.DefaultConfig()
	logConfig.OutputPath = filepath.Join(paths.LogDir, "nylon-gui.log")
	logConfig.Level = env.LogLevel
	logConfig.Console = !interactive

	log, err := logger.New(logConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "日誌初始化失敗: %v\n", err)
		return int(bootstrap.ExitFailure)
	}
	defer log.Sync()

	// 2. 崩潰保護
	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic", zap.Any("error", r), zap.String("stack", string(debug.Stack())))
			fmt.Fprintf(os.Stderr, "\n程序崩潰: %v\n", r)
			code = int(bootstrap.ExitFailure)
		}
	}()

	log.Info("Nylon GUI 正在啟動",
		zap.String("version", version.Version),
		zap.String("commit", version.GitCommit),
		zap.Bool("interactive", interactive),
		logger.Path("work_dir", paths.WorkDir),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. 依賴注入
	deps := initializeDependencies(log, paths, env)

	// 4. 啟動流程
	exit := deps.Bootstrap.Run(ctx, args)
	log.Info("Nylon GUI 退出", zap.Stringer("code", exit))
	return int(exit)
}

func redirectStdErr(filename string) {
	_ = os.MkdirAll(filepath.Dir(filename), 0755)
	f, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil {
		os.Stderr = f
	}
}
