package locator

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yat-Muk/nylon-gui/internal/domain/config"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/appctx"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/errors"
)

// scriptedPrompter 按順序返回預設的選擇結果
type scriptedPrompter struct {
	picks    []pick
	messages []string
	picked   int
}

type pick struct {
	path string
	err  error
}

func (p *scriptedPrompter) Message(_ context.Context, title, _ string) error {
	p.messages = append(p.messages, title)
	return nil
}

func (p *scriptedPrompter) PickFile(context.Context, string, string, []string) (string, error) {
	if p.picked >= len(p.picks) {
		return "", errors.ErrNoTerminal
	}
	r := p.picks[p.picked]
	p.picked++
	return r.path, r.err
}

const gameDir = "/games/Guitar Hero III"

func setup(t *testing.T, prompter Prompter, opts ...Option) (*Locator, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(gameDir, 0755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(gameDir, "GH3.exe"), []byte("MZ"), 0644))

	paths := &appctx.Paths{SaveDir: "/appdata/Aspyr/Guitar Hero III"}
	opts = append([]Option{WithCandidates()}, opts...)
	return New(fs, prompter, paths, zap.NewNop(), opts...), fs
}

func TestLocator_ExistingDirectory(t *testing.T) {
	prompter := &scriptedPrompter{}
	l, _ := setup(t, prompter)

	cfg := &config.GUIConfig{GameDirectory: gameDir}
	set, changed, err := l.ResolveGameDirectory(context.Background(), cfg)
	require.NoError(t, err)

	assert.False(t, changed)
	assert.Equal(t, gameDir, set.GameDir)
	assert.Equal(t, filepath.Join(gameDir, "Nylon", "mods"), set.ModsDir)
	assert.Equal(t, "/appdata/Aspyr/Guitar Hero III", set.SaveDir)
	assert.Zero(t, prompter.picked, "目錄有效時不應提示")
}

func TestLocator_Candidate(t *testing.T) {
	prompter := &scriptedPrompter{}
	l, _ := setup(t, prompter, WithCandidates("/nowhere", gameDir))

	cfg := &config.GUIConfig{}
	set, changed, err := l.ResolveGameDirectory(context.Background(), cfg)
	require.NoError(t, err)

	assert.True(t, changed)
	assert.Equal(t, gameDir, cfg.GameDirectory)
	assert.Equal(t, gameDir, set.GameDir)
	assert.Zero(t, prompter.picked)
}

func TestLocator_PromptLoop(t *testing.T) {
	prompter := &scriptedPrompter{picks: []pick{
		// 取消後重新提示
		{err: errors.ErrPromptCancelled},
		// 文件名不對
		{path: filepath.Join(gameDir, "readme.exe")},
		// 大小寫不敏感
		{path: filepath.Join(gameDir, "gh3.EXE")},
	}}
	l, _ := setup(t, prompter)

	cfg := &config.GUIConfig{GameDirectory: "/old/location"}
	set, changed, err := l.ResolveGameDirectory(context.Background(), cfg)
	require.NoError(t, err)

	assert.True(t, changed)
	assert.Equal(t, gameDir, cfg.GameDirectory)
	assert.Equal(t, gameDir, set.GameDir)
	assert.Equal(t, 3, prompter.picked)
	assert.Contains(t, prompter.messages, "文件不正確")
}

func TestLocator_Abort(t *testing.T) {
	t.Run("沒有終端", func(t *testing.T) {
		l, _ := setup(t, &scriptedPrompter{})

		_, _, err := l.ResolveGameDirectory(context.Background(), &config.GUIConfig{})
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, errors.ErrLocatorAborted))
		assert.True(t, stderrors.Is(err, errors.ErrNoTerminal))
	})

	t.Run("上下文取消", func(t *testing.T) {
		l, _ := setup(t, &scriptedPrompter{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := l.ResolveGameDirectory(ctx, &config.GUIConfig{})
		assert.True(t, stderrors.Is(err, errors.ErrLocatorAborted))
		assert.True(t, stderrors.Is(err, context.Canceled))
	})

	t.Run("超過最大次數", func(t *testing.T) {
		prompter := &scriptedPrompter{picks: []pick{
			{err: errors.ErrPromptCancelled},
			{err: errors.ErrPromptCancelled},
			{err: errors.ErrPromptCancelled},
		}}
		l, _ := setup(t, prompter, WithMaxAttempts(2))

		_, _, err := l.ResolveGameDirectory(context.Background(), &config.GUIConfig{})
		assert.True(t, stderrors.Is(err, errors.ErrLocatorAborted))
		assert.Equal(t, 2, prompter.picked)
	})
}
