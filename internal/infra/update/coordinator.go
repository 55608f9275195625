package update

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-version"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/Yat-Muk/nylon-gui/internal/pkg/appctx"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/errors"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/logger"
)

// DefaultRepository 發佈 Nylon 的 GitHub 倉庫
const DefaultRepository = "GH3-Nylon/Nylon"

// Config 更新源設置
type Config struct {
	APIBase    string
	Repository string
	Token      string
	Prerelease bool
	MaxRetries uint64
	Timeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		APIBase:    appctx.DefaultUpdateAPI,
		Repository: DefaultRepository,
		MaxRetries: 4,
		Timeout:    5 * time.Minute,
	}
}

// TempFiles 下載文件存放在會話臨時目錄中
type TempFiles interface {
	CreateFile(pattern string) (afero.File, error)
}

// Coordinator 檢查並安裝 Nylon
type Coordinator struct {
	fs         afero.Fs
	client     *http.Client
	temp       TempFiles
	cfg        Config
	log        *zap.Logger
	safe       logger.SafeLogger
	newBackOff func() backoff.BackOff
	now        func() time.Time

	prerelease atomic.Bool

	mu   sync.Mutex
	last *UpdateStatus
}

func NewCoordinator(fs afero.Fs, client *http.Client, temp TempFiles, cfg Config, log *zap.Logger) *Coordinator {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	c := &Coordinator{
		fs:     fs,
		client: client,
		temp:   temp,
		cfg:    cfg,
		log:    log,
		safe:   logger.NewSafeLogger(log),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxInterval = 10 * time.Second
			return b
		},
		now: time.Now,
	}
	c.prerelease.Store(cfg.Prerelease)
	return c
}

// SetPrerelease 切換是否接受預發佈版本，由應用配置的更新通道決定
func (c *Coordinator) SetPrerelease(enabled bool) {
	c.prerelease.Store(enabled)
}

// CheckForUpdates 比較已安裝版本與最新發佈版本
func (c *Coordinator) CheckForUpdates(ctx context.Context, target appctx.PathSet) (*UpdateStatus, error) {
	installed, err := InstalledVersion(c.fs, target.LoaderManifestFile)
	if err != nil {
		// 記錄損壞時按未安裝處理，安裝後會被覆蓋
		c.log.Warn("安裝記錄不可用，按未安裝處理", zap.Error(err))
		installed = nil
	}

	rel, err := c.latestRelease(ctx)
	if err != nil {
		return nil, err
	}

	latest, err := version.NewVersion(rel.TagName)
	if err != nil {
		return nil, fmt.Errorf("發佈版本號無效 %q: %w", rel.TagName, err)
	}

	asset, err := pickAsset(rel)
	if err != nil {
		return nil, err
	}

	status := &UpdateStatus{
		Installed: installed,
		Latest:    latest,
		Asset:     asset,
	}
	switch {
	case installed == nil:
		status.State = NotInstalled
	case installed.LessThan(latest):
		status.State = UpdateAvailable
	default:
		status.State = UpToDate
	}

	c.mu.Lock()
	c.last = status
	c.mu.Unlock()

	c.log.Info("更新檢查完成",
		zap.Stringer("state", status.State),
		zap.Stringer("latest", latest),
		zap.String("asset", asset.Name),
	)
	return status, nil
}

// InstallUpdate 下載並解壓最近一次檢查到的版本，沒有檢查結果時先檢查
func (c *Coordinator) InstallUpdate(ctx context.Context, target appctx.PathSet) error {
	c.mu.Lock()
	status := c.last
	c.mu.Unlock()

	if status == nil {
		var err error
		if status, err = c.CheckForUpdates(ctx, target); err != nil {
			return err
		}
	}

	if status.State == UpToDate {
		c.log.Info("Nylon 已是最新版本", zap.Stringer("version", status.Installed))
		return nil
	}

	if c.temp == nil {
		return fmt.Errorf("臨時目錄不可用")
	}
	file, err := c.temp.CreateFile("nylon-*.zip")
	if err != nil {
		return fmt.Errorf("創建下載文件失敗: %w", err)
	}
	defer file.Close()

	c.safe.Infof("開始下載 %s (%s)", status.Asset.URL, humanize.Bytes(uint64(max(status.Asset.Size, 0))))

	sum, size, err := c.download(ctx, status.Asset.URL, file)
	if err != nil {
		return fmt.Errorf("下載 Nylon 失敗: %w", err)
	}
	c.log.Info("下載完成",
		zap.String("size", humanize.Bytes(uint64(size))),
		zap.String("sha256", sum),
	)

	if err := verifyDigest(status.Asset, sum); err != nil {
		return fmt.Errorf("安裝 Nylon 失敗: %w", err)
	}

	files, err := extractZip(c.fs, file, size, target.GameDir)
	if err != nil {
		return fmt.Errorf("安裝 Nylon 失敗: %w", err)
	}

	manifest := &Manifest{
		Version:     status.Latest.Original(),
		Asset:       status.Asset.Name,
		SHA256:      sum,
		InstalledAt: c.now().UTC(),
		Files:       files,
	}
	if err := WriteManifest(c.fs, target.LoaderManifestFile, manifest); err != nil {
		return err
	}

	c.mu.Lock()
	c.last = &UpdateStatus{State: UpToDate, Installed: status.Latest, Latest: status.Latest, Asset: status.Asset}
	c.mu.Unlock()

	c.log.Info("Nylon 安裝成功",
		zap.String("version", manifest.Version),
		logger.Path("dir", target.GameDir),
		zap.Int("files", len(files)),
	)
	return nil
}

// InstalledVersion 返回已安裝版本字符串，未安裝時為空
func (c *Coordinator) InstalledVersion(target appctx.PathSet) string {
	v, err := InstalledVersion(c.fs, target.LoaderManifestFile)
	if err != nil || v == nil {
		return ""
	}
	return v.Original()
}

// pickAsset 選擇第一個 zip 資源
func pickAsset(rel *Release) (Asset, error) {
	for _, a := range rel.Assets {
		if strings.EqualFold(filepath.Ext(a.Name), ".zip") && a.URL != "" {
			return a, nil
		}
	}
	return Asset{}, errors.Wrap(errors.ErrNoReleaseAsset, "UPD001", rel.TagName)
}

// verifyDigest 將下載內容的 sha256 與 release 公佈的摘要比對，未公佈時跳過
func verifyDigest(asset Asset, sum string) error {
	if asset.Digest == "" {
		return nil
	}

	algo, want, ok := strings.Cut(asset.Digest, ":")
	if !ok || !strings.EqualFold(algo, "sha256") {
		return errors.Wrap(errors.ErrDigestMismatch, "UPD020", fmt.Sprintf("不支持的摘要格式: %s", asset.Digest))
	}
	if !strings.EqualFold(want, sum) {
		return errors.Wrap(errors.ErrDigestMismatch, "UPD021", fmt.Sprintf("%s: 期望 %s，實際 %s", asset.Name, want, sum))
	}
	return nil
}
