package elevation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Yat-Muk/nylon-gui/internal/infra/system"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/errors"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/logger"
)

// SetAccessMarker 提權後的進程只執行目錄授權並退出
const SetAccessMarker = "--set-access"

// Request 一次提權重啟的描述，用完即棄
type Request struct {
	Executable string
	Marker     string
	WorkDir    string
}

// NewRequest 以當前可執行文件與工作目錄構建請求
func NewRequest(marker string) (Request, error) {
	exe, err := os.Executable()
	if err != nil {
		return Request{}, fmt.Errorf("無法獲取可執行文件路徑: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	wd, err := os.Getwd()
	if err != nil {
		return Request{}, fmt.Errorf("無法獲取工作目錄: %w", err)
	}

	return Request{
		Executable: exe,
		Marker:     marker,
		WorkDir:    wd,
	}, nil
}

// Launcher 以管理員權限重啟自身
type Launcher struct {
	exec       system.Executor
	logger     *zap.Logger
	newRequest func(string) (Request, error)
	used       atomic.Bool
}

func NewLauncher(exec system.Executor, logger *zap.Logger) *Launcher {
	return &Launcher{
		exec:       exec,
		logger:     logger,
		newRequest: NewRequest,
	}
}

// RelaunchElevated 以 marker 作為唯一參數提權重啟，阻塞直到子進程退出並返回其退出碼
// 操作者拒絕時返回 ErrElevationDenied，無法啟動時返回 ErrElevationFailed
// 每個進程只允許調用一次
func (l *Launcher) RelaunchElevated(ctx context.Context, marker string) (int, error) {
	if !l.used.CompareAndSwap(false, true) {
		return -1, errors.Wrap(errors.ErrElevationFailed, "ELV001", "本次啟動已嘗試過提權")
	}

	req, err := l.newRequest(marker)
	if err != nil {
		return -1, errors.Wrap(errors.ErrElevationFailed, "ELV002", err.Error())
	}

	l.logger.Info("請求提權重啟",
		logger.Path("exe", req.Executable),
		zap.String("marker", req.Marker),
	)

	code, err := l.launch(ctx, req)
	if err != nil {
		l.logger.Warn("提權重啟失敗", zap.Error(err))
		return -1, err
	}

	l.logger.Info("提權進程已退出", zap.Int("exit_code", code))
	return code, nil
}
