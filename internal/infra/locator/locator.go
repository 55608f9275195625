package locator

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/Yat-Muk/nylon-gui/internal/domain/config"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/appctx"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/errors"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/logger"
)

// Prompter 定位流程需要的交互能力
type Prompter interface {
	Message(ctx context.Context, title, text string) error
	// PickFile 操作者取消時返回 ErrPromptCancelled，沒有終端時返回 ErrNoTerminal
	PickFile(ctx context.Context, title, startDir string, exts []string) (string, error)
}

// Locator 解析遊戲安裝目錄
type Locator struct {
	fs          afero.Fs
	prompter    Prompter
	paths       *appctx.Paths
	candidates  []string
	maxAttempts int
	logger      *zap.Logger
}

type Option func(*Locator)

// WithCandidates 替換首次提示前探測的候選目錄
func WithCandidates(dirs ...string) Option {
	return func(l *Locator) {
		l.candidates = dirs
	}
}

// WithMaxAttempts 限制提示次數，0 表示不限制
func WithMaxAttempts(n int) Option {
	return func(l *Locator) {
		l.maxAttempts = n
	}
}

func New(fs afero.Fs, prompter Prompter, paths *appctx.Paths, logger *zap.Logger, opts ...Option) *Locator {
	l := &Locator{
		fs:         fs,
		prompter:   prompter,
		paths:      paths,
		candidates: DefaultCandidates(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ResolveGameDirectory 循環提示直到配置中的遊戲目錄存在
// 第二個返回值報告 cfg.GameDirectory 是否被修改
func (l *Locator) ResolveGameDirectory(ctx context.Context, cfg *config.GUIConfig) (appctx.PathSet, bool, error) {
	if l.dirExists(cfg.GameDirectory) {
		return l.paths.Resolve(cfg.GameDirectory), false, nil
	}

	if cfg.GameDirectory != "" {
		l.logger.Warn("配置的遊戲目錄不存在", logger.Path("dir", cfg.GameDirectory))
	}

	if dir := l.findCandidate(); dir != "" {
		l.logger.Info("在默認位置找到遊戲", logger.Path("dir", dir))
		cfg.GameDirectory = dir
		return l.paths.Resolve(dir), true, nil
	}

	changed := false
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return appctx.PathSet{}, changed, abort(err)
		}
		if l.maxAttempts > 0 && attempts >= l.maxAttempts {
			return appctx.PathSet{}, changed, abort(fmt.Errorf("已提示 %d 次", attempts))
		}
		attempts++

		if err := l.prompter.Message(ctx, "找不到 Guitar Hero III",
			fmt.Sprintf("請選擇遊戲目錄中的 %s。", appctx.GameExecutableName)); err != nil && l.fatal(ctx, err) {
			return appctx.PathSet{}, changed, abort(err)
		}

		path, err := l.prompter.PickFile(ctx, "選擇 "+appctx.GameExecutableName, l.startDir(cfg), []string{".exe"})
		if err != nil {
			if l.fatal(ctx, err) {
				return appctx.PathSet{}, changed, abort(err)
			}
			l.logger.Info("操作者取消了選擇，重新提示", zap.Error(err))
			continue
		}

		if !strings.EqualFold(filepath.Base(path), appctx.GameExecutableName) {
			l.logger.Info("選擇的文件不是遊戲主程序", logger.Path("path", path))
			if err := l.prompter.Message(ctx, "文件不正確",
				fmt.Sprintf("%s 不是 %s。", filepath.Base(path), appctx.GameExecutableName)); err != nil && l.fatal(ctx, err) {
				return appctx.PathSet{}, changed, abort(err)
			}
			continue
		}

		dir := filepath.Dir(path)
		cfg.GameDirectory = dir
		changed = true

		if l.dirExists(dir) {
			l.logger.Info("遊戲目錄已選定", logger.Path("dir", dir))
			return l.paths.Resolve(dir), changed, nil
		}
	}
}

func (l *Locator) dirExists(dir string) bool {
	if dir == "" {
		return false
	}
	ok, err := afero.DirExists(l.fs, dir)
	return err == nil && ok
}

// findCandidate 返回第一個包含遊戲主程序的候選目錄
func (l *Locator) findCandidate() string {
	for _, dir := range l.candidates {
		ok, err := afero.Exists(l.fs, filepath.Join(dir, appctx.GameExecutableName))
		if err == nil && ok {
			return dir
		}
	}
	return ""
}

func (l *Locator) startDir(cfg *config.GUIConfig) string {
	if cfg.GameDirectory != "" {
		if parent := filepath.Dir(cfg.GameDirectory); l.dirExists(parent) {
			return parent
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// fatal 沒有終端或上下文已取消時無法繼續提示
func (l *Locator) fatal(ctx context.Context, err error) bool {
	return stderrors.Is(err, errors.ErrNoTerminal) || ctx.Err() != nil
}

func abort(cause error) error {
	return errors.Wrap(stderrors.Join(errors.ErrLocatorAborted, cause), "LOC001", "遊戲目錄定位已中止")
}
