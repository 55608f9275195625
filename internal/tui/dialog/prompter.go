package dialog

import (
	"context"
	stderrors "errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Yat-Muk/nylon-gui/internal/pkg/errors"
)

// Prompter 啟動階段的模態交互：確認框、消息框、文件選擇與進度提示
type Prompter struct {
	in     io.Reader
	out    io.Writer
	isTTY  func() bool
	logger *zap.Logger
}

// NewPrompter 使用進程的標準輸入輸出
func NewPrompter(logger *zap.Logger) *Prompter {
	return &Prompter{
		in:     os.Stdin,
		out:    os.Stdout,
		isTTY:  stdioIsTerminal,
		logger: logger,
	}
}

// NewPrompterWithIO 用於測試或嵌入
func NewPrompterWithIO(in io.Reader, out io.Writer, isTTY func() bool, logger *zap.Logger) *Prompter {
	return &Prompter{
		in:     in,
		out:    out,
		isTTY:  isTTY,
		logger: logger,
	}
}

func stdioIsTerminal() bool {
	isTerm := func(fd uintptr) bool {
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	return isTerm(os.Stdin.Fd()) && isTerm(os.Stdout.Fd())
}

func (p *Prompter) program(ctx context.Context, m tea.Model) *tea.Program {
	return tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)
}

func (p *Prompter) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	if !p.isTTY() {
		return nil, errors.ErrNoTerminal
	}

	final, err := p.program(ctx, m).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return final, nil
}

// Confirm 是/否選擇，取消時返回 ErrPromptCancelled
func (p *Prompter) Confirm(ctx context.Context, title, text string) (bool, error) {
	final, err := p.run(ctx, newConfirmModel(title, text))
	if err != nil {
		return false, err
	}

	m := final.(confirmModel)
	p.logger.Info("確認框已關閉",
		zap.String("title", title),
		zap.Bool("yes", m.Yes()),
		zap.Bool("cancelled", m.cancelled),
	)
	if m.cancelled {
		return false, errors.ErrPromptCancelled
	}
	return m.Yes(), nil
}

// Message 信息提示
func (p *Prompter) Message(ctx context.Context, title, text string) error {
	_, err := p.run(ctx, newMessageModel(title, text, false))
	return err
}

// Error 錯誤提示
func (p *Prompter) Error(ctx context.Context, title, text string) error {
	_, err := p.run(ctx, newMessageModel(title, text, true))
	return err
}

// PickFile 選擇擴展名在 exts 中的文件，取消時返回 ErrPromptCancelled
func (p *Prompter) PickFile(ctx context.Context, title, startDir string, exts []string) (string, error) {
	final, err := p.run(ctx, newPickerModel(title, startDir, exts))
	if err != nil {
		return "", err
	}

	m := final.(pickerModel)
	if m.cancelled || m.selected == "" {
		return "", errors.ErrPromptCancelled
	}
	return m.selected, nil
}

// Progress 在後台協程執行 work 並同步等待完成，期間顯示進度動畫
// 沒有終端時直接執行 work
func (p *Prompter) Progress(ctx context.Context, title string, work func(context.Context) error) error {
	if !p.isTTY() {
		p.logger.Debug("無終端，直接執行任務", zap.String("title", title))
		return work(ctx)
	}

	uiCtx, cancelUI := context.WithCancel(ctx)
	defer cancelUI()

	prog := p.program(uiCtx, newProgressModel(title))

	var g errgroup.Group
	g.Go(func() error {
		err := work(ctx)
		prog.Send(doneMsg{err: err})
		return err
	})

	if _, err := prog.Run(); err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		p.logger.Warn("進度界面異常退出", zap.Error(err))
	}

	return g.Wait()
}
