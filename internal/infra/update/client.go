package update

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/afero"

	"github.com/Yat-Muk/nylon-gui/internal/pkg/version"
)

const maxReleaseBody = 1 << 20

// statusError 非 2xx 響應
type statusError struct {
	Code int
	URL  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.URL)
}

// retryable 4xx（限流除外）重試無意義
func (e *statusError) retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

func (c *Coordinator) newRequest(ctx context.Context, url string, accept string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("創建請求失敗: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", accept)
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	return req, nil
}

// retry 以指數退避執行 op，4xx 錯誤立即返回
func (c *Coordinator) retry(ctx context.Context, what string, op func() error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.cfg.MaxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		c.safe.Warnf("%s失敗，%v 後重試: %v", what, wait, err)
	}
	return backoff.RetryNotify(func() error {
		err := op()
		if se, ok := err.(*statusError); ok && !se.retryable() {
			return backoff.Permanent(err)
		}
		return err
	}, b, notify)
}

// latestRelease 獲取最新 release，允許預發佈時取列表中第一個非草稿
func (c *Coordinator) latestRelease(ctx context.Context) (*Release, error) {
	base := strings.TrimRight(c.cfg.APIBase, "/")
	url := fmt.Sprintf("%s/repos/%s/releases/latest", base, c.cfg.Repository)
	prerelease := c.prerelease.Load()
	if prerelease {
		url = fmt.Sprintf("%s/repos/%s/releases?per_page=10", base, c.cfg.Repository)
	}

	var body []byte
	err := c.retry(ctx, "獲取版本信息", func() error {
		req, err := c.newRequest(ctx, url, "application/vnd.github+json")
		if err != nil {
			return backoff.Permanent(err)
		}
		c.safe.Debugf("請求 %s", url)

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &statusError{Code: resp.StatusCode, URL: url}
		}
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxReleaseBody))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("獲取最新版本失敗: %w", err)
	}

	if !prerelease {
		rel := &Release{}
		if err := json.Unmarshal(body, rel); err != nil {
			return nil, fmt.Errorf("解析版本信息失敗: %w", err)
		}
		return rel, nil
	}

	var releases []Release
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, fmt.Errorf("解析版本列表失敗: %w", err)
	}
	for i := range releases {
		if !releases[i].Draft {
			return &releases[i], nil
		}
	}
	return nil, fmt.Errorf("倉庫 %s 沒有已發佈的版本", c.cfg.Repository)
}

// download 下載到 dst，每次重試前清空文件，返回 sha256 與大小
func (c *Coordinator) download(ctx context.Context, url string, dst afero.File) (string, int64, error) {
	var (
		sum  string
		size int64
	)

	err := c.retry(ctx, "下載", func() error {
		if err := dst.Truncate(0); err != nil {
			return backoff.Permanent(err)
		}
		if _, err := dst.Seek(0, io.SeekStart); err != nil {
			return backoff.Permanent(err)
		}

		req, err := c.newRequest(ctx, url, "application/octet-stream")
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &statusError{Code: resp.StatusCode, URL: url}
		}

		h := sha256.New()
		n, err := io.Copy(io.MultiWriter(dst, h), resp.Body)
		if err != nil {
			return fmt.Errorf("寫入下載文件失敗: %w", err)
		}
		if resp.ContentLength > 0 && n != resp.ContentLength {
			return fmt.Errorf("下載不完整: %d/%d", n, resp.ContentLength)
		}

		sum = hex.EncodeToString(h.Sum(nil))
		size = n
		return nil
	})
	if err != nil {
		return "", 0, err
	}
	return sum, size, nil
}
