package application

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-version"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yat-Muk/nylon-gui/internal/domain/bootstrap"
	"github.com/Yat-Muk/nylon-gui/internal/domain/config"
	infraConfig "github.com/Yat-Muk/nylon-gui/internal/infra/config"
	"github.com/Yat-Muk/nylon-gui/internal/infra/elevation"
	"github.com/Yat-Muk/nylon-gui/internal/infra/locator"
	"github.com/Yat-Muk/nylon-gui/internal/infra/update"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/appctx"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/errors"
)

const gameDir = "/games/gh3"

// ==========================================
// 測試替身
// ==========================================

type fakePrompter struct {
	answers  []bool
	picks    []string
	pickErr  error
	asked    []string
	messages []string
	errors   []string
	progress int
}

func (p *fakePrompter) Confirm(_ context.Context, title, _ string) (bool, error) {
	p.asked = append(p.asked, title)
	if len(p.answers) == 0 {
		return false, errors.ErrNoTerminal
	}
	ok := p.answers[0]
	p.answers = p.answers[1:]
	return ok, nil
}

func (p *fakePrompter) Message(_ context.Context, title, _ string) error {
	p.messages = append(p.messages, title)
	return nil
}

func (p *fakePrompter) Error(_ context.Context, title, _ string) error {
	p.errors = append(p.errors, title)
	return nil
}

func (p *fakePrompter) PickFile(context.Context, string, string, []string) (string, error) {
	if p.pickErr != nil {
		return "", p.pickErr
	}
	if len(p.picks) == 0 {
		return "", errors.ErrNoTerminal
	}
	path := p.picks[0]
	p.picks = p.picks[1:]
	if path == "" {
		return "", errors.ErrPromptCancelled
	}
	return path, nil
}

func (p *fakePrompter) Progress(ctx context.Context, _ string, work func(context.Context) error) error {
	p.progress++
	return work(ctx)
}

type fakePermission struct {
	allowed bool
	dirs    []string
}

func (f *fakePermission) CanWriteToTargetDirectory(dir string) bool {
	f.dirs = append(f.dirs, dir)
	return f.allowed
}

type fakeElevator struct {
	code    int
	err     error
	markers []string
}

func (f *fakeElevator) RelaunchElevated(_ context.Context, marker string) (int, error) {
	f.markers = append(f.markers, marker)
	return f.code, f.err
}

type fakeUpdater struct {
	status     *update.UpdateStatus
	checkErr   error
	installErr error
	version    string
	installed  string
	checks     int
	installs   int
	prerelease bool
}

func (f *fakeUpdater) CheckForUpdates(context.Context, appctx.PathSet) (*update.UpdateStatus, error) {
	f.checks++
	return f.status, f.checkErr
}

func (f *fakeUpdater) InstallUpdate(context.Context, appctx.PathSet) error {
	f.installs++
	if f.installErr != nil {
		return f.installErr
	}
	f.version = f.installed
	return nil
}

func (f *fakeUpdater) InstalledVersion(appctx.PathSet) string {
	return f.version
}

func (f *fakeUpdater) SetPrerelease(enabled bool) { f.prerelease = enabled }

type fakeGUI struct {
	runs    int
	err     error
	session *bootstrap.Session
}

func (f *fakeGUI) Run(_ context.Context, s *bootstrap.Session) error {
	f.runs++
	f.session = s
	return f.err
}

type fakeArgs struct {
	calls [][]string
	code  bootstrap.ExitCode
}

func (f *fakeArgs) Handle(_ context.Context, _ *bootstrap.Session, args []string) bootstrap.ExitCode {
	f.calls = append(f.calls, args)
	return f.code
}

type fakeTemp struct {
	inits    int
	cleanups int
	initErr  error
}

func (f *fakeTemp) Init() error {
	f.inits++
	return f.initErr
}

func (f *fakeTemp) Cleanup() { f.cleanups++ }

type harness struct {
	fs       afero.Fs
	paths    *appctx.Paths
	guiRepo  *infraConfig.FileRepository[config.GUIConfig]
	prompter *fakePrompter
	perm     *fakePermission
	elevator *fakeElevator
	updater  *fakeUpdater
	gui      *fakeGUI
	args     *fakeArgs
	temp     *fakeTemp
	svc      *BootstrapService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	log := zap.NewNop()
	fs := afero.NewMemMapFs()
	paths := &appctx.Paths{
		WorkDir:       "/work",
		GUIConfigFile: "/work/config.json",
		SaveDir:       "/appdata/Aspyr/Guitar Hero III",
	}

	h := &harness{
		fs:       fs,
		paths:    paths,
		guiRepo:  infraConfig.NewFileRepository[config.GUIConfig](fs, paths.GUIConfigFile, log),
		prompter: &fakePrompter{},
		perm:     &fakePermission{allowed: true},
		elevator: &fakeElevator{},
		updater: &fakeUpdater{
			status:    &update.UpdateStatus{State: update.UpToDate, Latest: version.Must(version.NewVersion("1.4.0"))},
			installed: "1.4.0",
		},
		gui:  &fakeGUI{},
		args: &fakeArgs{code: bootstrap.ExitSuccess},
		temp: &fakeTemp{},
	}

	h.svc = NewBootstrapService(BootstrapDeps{
		Fs:       fs,
		Paths:    paths,
		GUIStore: h.guiRepo,
		LoaderStore: func(path string) ConfigStore[config.LoaderConfig] {
			return infraConfig.NewFileRepository[config.LoaderConfig](fs, path, log)
		},
		Locator:    locator.New(fs, h.prompter, paths, log, locator.WithCandidates()),
		Permission: h.perm,
		Elevator:   h.elevator,
		Updater:    h.updater,
		Prompter:   h.prompter,
		GUI:        h.gui,
		Args:       h.args,
		Temp:       h.temp,
	}, log)

	return h
}

// installGame 在內存文件系統中放置遊戲主程序
func (h *harness) installGame(t *testing.T) {
	t.Helper()
	require.NoError(t, h.fs.MkdirAll(gameDir, 0755))
	require.NoError(t, afero.WriteFile(h.fs, filepath.Join(gameDir, appctx.GameExecutableName), []byte("MZ"), 0644))
}

func (h *harness) configureGame(t *testing.T) {
	t.Helper()
	h.installGame(t)
	cfg := config.DefaultGUIConfig()
	cfg.GameDirectory = gameDir
	require.NoError(t, h.guiRepo.Write(context.Background(), cfg))
}

func (h *harness) exists(t *testing.T, path string) bool {
	t.Helper()
	ok, err := afero.Exists(h.fs, path)
	require.NoError(t, err)
	return ok
}

func (h *harness) set() appctx.PathSet {
	return h.paths.Resolve(gameDir)
}

// ==========================================
// 狀態機場景
// ==========================================

// 全新環境，選擇遊戲後拒絕安裝 Nylon
func TestBootstrap_FreshEnvironmentDeclineInstall(t *testing.T) {
	h := newHarness(t)
	h.installGame(t)
	h.prompter.picks = []string{filepath.Join(gameDir, appctx.GameExecutableName)}
	h.prompter.answers = []bool{false}

	code := h.svc.Run(context.Background(), nil)

	assert.Equal(t, bootstrap.ExitSuccess, code)

	saved, err := h.guiRepo.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gameDir, saved.GameDirectory)

	set := h.set()
	assert.True(t, h.exists(t, set.ModLoaderDir))
	assert.True(t, h.exists(t, set.ModsDir))
	assert.False(t, h.exists(t, set.LoaderConfigFile), "降級模式不應寫入 Nylon 配置")

	assert.Zero(t, h.updater.checks)
	require.Equal(t, 1, h.gui.runs)
	assert.True(t, h.gui.session.LoaderMissing)
	assert.NotNil(t, h.gui.session.Loader)
	assert.Equal(t, 1, h.temp.cleanups)
}

// 沒有權限且拒絕提權
func TestBootstrap_PermissionDeniedDeclined(t *testing.T) {
	h := newHarness(t)
	h.configureGame(t)
	h.perm.allowed = false
	h.prompter.answers = []bool{false}

	code := h.svc.Run(context.Background(), nil)

	assert.Equal(t, bootstrap.ExitCancelled, code)
	assert.Empty(t, h.elevator.markers)
	assert.Equal(t, []string{gameDir}, h.perm.dirs)
	assert.Zero(t, h.gui.runs)
	assert.False(t, h.exists(t, h.set().ModLoaderDir))
	assert.Equal(t, 1, h.temp.cleanups)
}

// 同意提權，授權進程成功後本進程交接退出
func TestBootstrap_PermissionDeniedElevationHandOff(t *testing.T) {
	h := newHarness(t)
	h.configureGame(t)
	h.perm.allowed = false
	h.prompter.answers = []bool{true}

	code := h.svc.Run(context.Background(), nil)

	assert.Equal(t, bootstrap.ExitCancelled, code)
	assert.Equal(t, []string{elevation.SetAccessMarker}, h.elevator.markers)
	assert.Zero(t, h.gui.runs)
	assert.Empty(t, h.prompter.errors)
	assert.Equal(t, 1, h.temp.cleanups)
}

func TestBootstrap_ElevationFailures(t *testing.T) {
	tests := []struct {
		name string
		code int
		err  error
	}{
		{"操作者拒絕 UAC", -1, errors.ErrElevationDenied},
		{"無法啟動", -1, errors.ErrElevationFailed},
		{"授權進程失敗", int(bootstrap.ExitPrivilegeNotHeld), nil},
		{"授權進程返回 -1", -1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.configureGame(t)
			h.perm.allowed = false
			h.prompter.answers = []bool{true}
			h.elevator.code = tt.code
			h.elevator.err = tt.err

			code := h.svc.Run(context.Background(), nil)

			assert.Equal(t, bootstrap.ExitPrivilegeNotHeld, code)
			assert.Len(t, h.elevator.markers, 1, "提權不應自動重試")
			assert.Len(t, h.prompter.errors, 1)
			assert.Zero(t, h.gui.runs)
			assert.Equal(t, 1, h.temp.cleanups)
		})
	}
}

// 同意安裝但更新失敗
func TestBootstrap_InstallFailure(t *testing.T) {
	h := newHarness(t)
	h.configureGame(t)
	h.prompter.answers = []bool{true}
	h.updater.installErr = stderrors.New("connection reset")

	code := h.svc.Run(context.Background(), nil)

	assert.Equal(t, bootstrap.ExitFailure, code)
	assert.Equal(t, []string{"安裝失敗"}, h.prompter.errors)

	set := h.set()
	assert.True(t, h.exists(t, set.ModLoaderDir))
	assert.False(t, h.exists(t, set.ModsDir))
	assert.False(t, h.exists(t, set.LoaderConfigFile))
	assert.Zero(t, h.gui.runs)
	assert.Equal(t, 1, h.temp.cleanups)
}

func TestBootstrap_CheckFailureDuringInstall(t *testing.T) {
	h := newHarness(t)
	h.configureGame(t)
	h.prompter.answers = []bool{true}
	h.updater.checkErr = stderrors.New("rate limited")

	code := h.svc.Run(context.Background(), nil)

	assert.Equal(t, bootstrap.ExitFailure, code)
	assert.Zero(t, h.updater.installs)
	assert.Equal(t, 1, h.prompter.progress)
}

func TestBootstrap_InstallSuccess(t *testing.T) {
	h := newHarness(t)
	h.configureGame(t)
	h.prompter.answers = []bool{true}
	h.updater.status = &update.UpdateStatus{State: update.NotInstalled, Latest: version.Must(version.NewVersion("1.4.0"))}

	code := h.svc.Run(context.Background(), nil)

	assert.Equal(t, bootstrap.ExitSuccess, code)
	assert.Equal(t, 1, h.updater.checks)
	assert.Equal(t, 1, h.updater.installs)
	assert.True(t, h.exists(t, h.set().LoaderConfigFile))

	require.Equal(t, 1, h.gui.runs)
	assert.False(t, h.gui.session.LoaderMissing)
	assert.Equal(t, "1.4.0", h.gui.session.LoaderVersion)
}

// 所有目錄與配置都已存在
func TestBootstrap_AlreadyProvisioned(t *testing.T) {
	h := newHarness(t)
	h.configureGame(t)
	set := h.set()
	require.NoError(t, h.fs.MkdirAll(set.ModsDir, 0755))

	loaderDoc := []byte(`{
  // 手動編輯
  "ConfigVersion": 1,
  "Enabled": true,
  "LogLevel": "debug",
  "DisabledMods": ["Practice"],
}
`)
	require.NoError(t, afero.WriteFile(h.fs, set.LoaderConfigFile, loaderDoc, 0644))
	guiDoc, err := afero.ReadFile(h.fs, h.paths.GUIConfigFile)
	require.NoError(t, err)
	h.updater.version = "1.4.0"

	code := h.svc.Run(context.Background(), nil)

	assert.Equal(t, bootstrap.ExitSuccess, code)
	assert.Empty(t, h.prompter.asked, "不應出現任何確認提示")
	assert.Zero(t, h.updater.installs)

	after, err := afero.ReadFile(h.fs, set.LoaderConfigFile)
	require.NoError(t, err)
	assert.Equal(t, loaderDoc, after, "Nylon 配置不應被覆蓋")
	afterGUI, err := afero.ReadFile(h.fs, h.paths.GUIConfigFile)
	require.NoError(t, err)
	assert.Equal(t, guiDoc, afterGUI, "應用配置不應被覆蓋")

	require.Equal(t, 1, h.gui.runs)
	s := h.gui.session
	assert.Equal(t, "debug", s.Loader.LogLevel)
	assert.False(t, s.Loader.IsModEnabled("Practice"))
	assert.Equal(t, "1.4.0", s.LoaderVersion)
}

// 連續兩次運行不產生破壞性寫入
func TestBootstrap_Idempotent(t *testing.T) {
	h := newHarness(t)
	h.configureGame(t)
	h.prompter.answers = []bool{true}

	require.Equal(t, bootstrap.ExitSuccess, h.svc.Run(context.Background(), nil))

	set := h.set()
	snapshot := map[string][]byte{}
	for _, path := range []string{h.paths.GUIConfigFile, set.LoaderConfigFile} {
		data, err := afero.ReadFile(h.fs, path)
		require.NoError(t, err)
		snapshot[path] = data
	}

	require.Equal(t, bootstrap.ExitSuccess, h.svc.Run(context.Background(), nil))

	for path, before := range snapshot {
		after, err := afero.ReadFile(h.fs, path)
		require.NoError(t, err)
		assert.Equal(t, before, after, path)
	}
	assert.Equal(t, 1, h.updater.installs)
	assert.Equal(t, 2, h.gui.runs)
	assert.Equal(t, 2, h.temp.cleanups)
}

// 帶參數啟動跳過交互流程
func TestBootstrap_ArgumentDispatch(t *testing.T) {
	h := newHarness(t)

	code := h.svc.Run(context.Background(), []string{elevation.SetAccessMarker})

	assert.Equal(t, bootstrap.ExitSuccess, code)
	assert.Equal(t, [][]string{{elevation.SetAccessMarker}}, h.args.calls)
	assert.Empty(t, h.prompter.messages)
	assert.Empty(t, h.prompter.asked)
	assert.Empty(t, h.perm.dirs)
	assert.Zero(t, h.gui.runs)
	assert.True(t, h.exists(t, h.paths.GUIConfigFile), "參數路徑之前仍應加載配置")
	assert.Equal(t, 1, h.temp.cleanups)
}

func TestBootstrap_ArgumentDispatchPropagatesCode(t *testing.T) {
	h := newHarness(t)
	h.args.code = bootstrap.ExitPrivilegeNotHeld

	assert.Equal(t, bootstrap.ExitPrivilegeNotHeld, h.svc.Run(context.Background(), []string{"--set-access"}))
}

// ==========================================
// 其他路徑
// ==========================================

func TestBootstrap_UpdateOffered(t *testing.T) {
	newer := &update.UpdateStatus{
		State:     update.UpdateAvailable,
		Installed: version.Must(version.NewVersion("1.3.0")),
		Latest:    version.Must(version.NewVersion("1.4.0")),
	}

	t.Run("接受更新", func(t *testing.T) {
		h := newHarness(t)
		h.configureGame(t)
		require.NoError(t, h.fs.MkdirAll(h.set().ModLoaderDir, 0755))
		h.updater.version = "1.3.0"
		h.updater.status = newer
		h.prompter.answers = []bool{true}

		assert.Equal(t, bootstrap.ExitSuccess, h.svc.Run(context.Background(), nil))
		assert.Equal(t, 1, h.updater.installs)
		assert.Equal(t, "1.4.0", h.gui.session.LoaderVersion)
	})

	t.Run("跳過更新", func(t *testing.T) {
		h := newHarness(t)
		h.configureGame(t)
		require.NoError(t, h.fs.MkdirAll(h.set().ModLoaderDir, 0755))
		h.updater.version = "1.3.0"
		h.updater.status = newer
		h.prompter.answers = []bool{false}

		assert.Equal(t, bootstrap.ExitSuccess, h.svc.Run(context.Background(), nil))
		assert.Zero(t, h.updater.installs)
		assert.Equal(t, "1.3.0", h.gui.session.LoaderVersion)
	})

	t.Run("檢查失敗不影響啟動", func(t *testing.T) {
		h := newHarness(t)
		h.configureGame(t)
		require.NoError(t, h.fs.MkdirAll(h.set().ModLoaderDir, 0755))
		h.updater.status = nil
		h.updater.checkErr = stderrors.New("offline")

		assert.Equal(t, bootstrap.ExitSuccess, h.svc.Run(context.Background(), nil))
		assert.Empty(t, h.prompter.errors)
		assert.Equal(t, 1, h.gui.runs)
	})

	t.Run("關閉自動檢查", func(t *testing.T) {
		h := newHarness(t)
		h.installGame(t)
		cfg := config.DefaultGUIConfig()
		cfg.GameDirectory = gameDir
		cfg.CheckForUpdates = false
		require.NoError(t, h.guiRepo.Write(context.Background(), cfg))
		require.NoError(t, h.fs.MkdirAll(h.set().ModLoaderDir, 0755))

		assert.Equal(t, bootstrap.ExitSuccess, h.svc.Run(context.Background(), nil))
		assert.Zero(t, h.updater.checks)
	})
}

func TestBootstrap_UpdateChannel(t *testing.T) {
	h := newHarness(t)
	cfg := config.DefaultGUIConfig()
	cfg.UpdateChannel = config.ChannelPrerelease
	require.NoError(t, h.guiRepo.Write(context.Background(), cfg))

	h.svc.Run(context.Background(), []string{"paths"})
	assert.True(t, h.updater.prerelease)
}

func TestBootstrap_LocatorAborted(t *testing.T) {
	h := newHarness(t)
	h.prompter.pickErr = errors.ErrNoTerminal

	code := h.svc.Run(context.Background(), nil)

	assert.Equal(t, bootstrap.ExitCancelled, code)
	assert.Empty(t, h.perm.dirs)
	assert.Zero(t, h.gui.runs)
	assert.Equal(t, 1, h.temp.cleanups)
}

func TestBootstrap_LocatorRetriesUntilValid(t *testing.T) {
	h := newHarness(t)
	h.installGame(t)
	h.prompter.picks = []string{
		"",
		"/games/other/setup.exe",
		filepath.Join(gameDir, "gh3.EXE"),
	}
	h.prompter.answers = []bool{false}

	assert.Equal(t, bootstrap.ExitSuccess, h.svc.Run(context.Background(), nil))
	assert.Equal(t, gameDir, h.gui.session.GUI.GameDirectory)
}

func TestBootstrap_InvalidLoaderConfig(t *testing.T) {
	h := newHarness(t)
	h.configureGame(t)
	set := h.set()
	require.NoError(t, h.fs.MkdirAll(set.ModsDir, 0755))
	require.NoError(t, afero.WriteFile(h.fs, set.LoaderConfigFile, []byte("{not json"), 0644))
	h.updater.version = "1.4.0"

	code := h.svc.Run(context.Background(), nil)

	assert.Equal(t, bootstrap.ExitSuccess, code)
	assert.Equal(t, []string{"配置無效"}, h.prompter.errors)
	assert.Equal(t, config.DefaultLoaderConfig(), h.gui.session.Loader)

	data, err := afero.ReadFile(h.fs, set.LoaderConfigFile)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

// 舊版 Nylon 寫出的配置沒有 LogLevel
func TestBootstrap_LoaderConfigWithoutLogLevel(t *testing.T) {
	h := newHarness(t)
	h.configureGame(t)
	set := h.set()
	require.NoError(t, h.fs.MkdirAll(set.ModsDir, 0755))

	loaderDoc := []byte(`{"ConfigVersion": 1, "Enabled": true, "DisabledMods": ["Practice"]}`)
	require.NoError(t, afero.WriteFile(h.fs, set.LoaderConfigFile, loaderDoc, 0644))
	h.updater.version = "1.4.0"

	code := h.svc.Run(context.Background(), nil)

	assert.Equal(t, bootstrap.ExitSuccess, code)
	assert.Empty(t, h.prompter.errors)
	require.Equal(t, 1, h.gui.runs)
	assert.False(t, h.gui.session.Loader.IsModEnabled("Practice"))

	after, err := afero.ReadFile(h.fs, set.LoaderConfigFile)
	require.NoError(t, err)
	assert.Equal(t, loaderDoc, after)
}

func TestBootstrap_GUIFailure(t *testing.T) {
	h := newHarness(t)
	h.configureGame(t)
	h.prompter.answers = []bool{false}
	h.gui.err = stderrors.New("terminal lost")

	assert.Equal(t, bootstrap.ExitFailure, h.svc.Run(context.Background(), nil))
	assert.Equal(t, []string{"界面錯誤"}, h.prompter.errors)
	assert.Equal(t, 1, h.temp.cleanups)
}

func TestBootstrap_GUIConfigUnreadable(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, afero.WriteFile(h.fs, h.paths.GUIConfigFile, []byte(`{"UpdateChannel": "nightly"}`), 0644))

	code := h.svc.Run(context.Background(), nil)

	assert.Equal(t, bootstrap.ExitFailure, code)
	assert.Equal(t, []string{"配置錯誤"}, h.prompter.errors)
	assert.Empty(t, h.args.calls)
	assert.Zero(t, h.gui.runs)
	assert.Equal(t, 1, h.temp.cleanups)
}

func TestBootstrap_TempInitFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.configureGame(t)
	h.prompter.answers = []bool{false}
	h.temp.initErr = stderrors.New("read-only tmp")

	assert.Equal(t, bootstrap.ExitSuccess, h.svc.Run(context.Background(), nil))
	assert.Equal(t, 1, h.temp.cleanups)
}

func TestLoadGUIConfig_MigratesV1(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, afero.WriteFile(h.fs, h.paths.GUIConfigFile, []byte(`{"GH3Directory": "D:\\Games\\GH3"}`), 0644))

	cfg, err := h.svc.LoadGUIConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, config.GUIConfigVersionLatest, cfg.ConfigVersion)
	assert.Equal(t, `D:\Games\GH3`, cfg.GameDirectory)
	assert.NotEmpty(t, cfg.InstallID)

	saved, err := h.guiRepo.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg, saved)
}

func TestLoadGUIConfig_WritesDefaultsOnce(t *testing.T) {
	h := newHarness(t)

	first, err := h.svc.LoadGUIConfig(context.Background())
	require.NoError(t, err)
	second, err := h.svc.LoadGUIConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.InstallID, second.InstallID)
	assert.Empty(t, first.GameDirectory)
}
