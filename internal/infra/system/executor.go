package system

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/Yat-Muk/nylon-gui/internal/pkg/errors"
)

// Executor 命令執行器接口
type Executor interface {
	// Execute 執行命令並返回合併輸出
	Execute(ctx context.Context, name string, args ...string) (string, error)

	// Run 以繼承的標準輸入輸出執行命令，返回子進程退出碼
	// 子進程正常退出（無論退出碼）時 error 為 nil，無法啟動時返回錯誤
	Run(ctx context.Context, name string, args ...string) (int, error)

	// IsAllowed 檢查命令是否在白名單中
	IsAllowed(name string) bool
}

// SafeExecutor 安全的命令執行器
type SafeExecutor struct {
	allowlist map[string]bool
	logger    *zap.Logger
}

// DefaultAllowlist 提權與授權流程需要的命令
var DefaultAllowlist = []string{
	"pkexec",
	"chown",
}

// NewExecutor 使用默認白名單創建命令執行器
func NewExecutor(logger *zap.Logger) Executor {
	return NewExecutorWithAllowlist(logger, DefaultAllowlist...)
}

// NewExecutorWithAllowlist 使用指定白名單創建命令執行器
func NewExecutorWithAllowlist(logger *zap.Logger, names ...string) Executor {
	allowlist := make(map[string]bool, len(names))
	for _, n := range names {
		allowlist[n] = true
	}
	return &SafeExecutor{
		allowlist: allowlist,
		logger:    logger,
	}
}

// Execute 執行命令
func (e *SafeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	if !e.IsAllowed(name) {
		return "", errors.Wrap(errors.ErrCommandNotAllowed, "SYS001", fmt.Sprintf("命令 %q 不在白名單中", name))
	}

	cmd := exec.CommandContext(ctx, name, args...)

	e.logger.Debug("執行命令",
		zap.String("cmd", name),
		zap.Strings("args", args),
	)

	output, err := cmd.CombinedOutput()
	outputStr := strings.TrimSpace(string(output))

	if err != nil {
		e.logger.Error("命令執行失敗",
			zap.String("cmd", name),
			zap.Strings("args", args),
			zap.String("output", outputStr),
			zap.Error(err),
		)
		return outputStr, errors.Wrap(err, "SYS002", "命令執行失敗")
	}

	e.logger.Debug("命令執行成功",
		zap.String("cmd", name),
		zap.String("output", outputStr),
	)

	return outputStr, nil
}

// Run 執行命令並等待其退出
// pkexec 等工具可能需要終端交互，因此不捕獲輸出
func (e *SafeExecutor) Run(ctx context.Context, name string, args ...string) (int, error) {
	if !e.IsAllowed(name) {
		return -1, errors.Wrap(errors.ErrCommandNotAllowed, "SYS001", fmt.Sprintf("命令 %q 不在白名單中", name))
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	e.logger.Debug("運行命令",
		zap.String("cmd", name),
		zap.Strings("args", args),
	)

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		e.logger.Info("命令已退出",
			zap.String("cmd", name),
			zap.Int("exit_code", code),
		)
		return code, nil
	}

	e.logger.Error("命令無法啟動",
		zap.String("cmd", name),
		zap.Error(err),
	)
	return -1, errors.Wrap(stderrors.Join(errors.ErrCommandFailed, err), "SYS002", "命令無法啟動")
}

// IsAllowed 檢查命令是否在白名單中
func (e *SafeExecutor) IsAllowed(name string) bool {
	return e.allowlist[name]
}
