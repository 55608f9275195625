//go:build unix

package elevation

import (
	"context"
	"fmt"

	"github.com/Yat-Muk/nylon-gui/internal/pkg/appctx"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/errors"
)

// pkexec 的退出碼：126 認證對話框被關閉，127 未獲授權或無認證代理
const (
	pkexecDismissed     = 126
	pkexecNotAuthorized = 127
)

// launch 通過 pkexec 重啟
// pkexec 會清空環境並切換工作目錄，因此用 env 把工作目錄帶給子進程
func (l *Launcher) launch(ctx context.Context, req Request) (int, error) {
	code, err := l.exec.Run(ctx, "pkexec",
		"env", fmt.Sprintf("%s=%s", appctx.EnvWorkDir, req.WorkDir),
		req.Executable, req.Marker,
	)
	if err != nil {
		return -1, errors.Wrap(errors.ErrElevationFailed, "ELV003", err.Error())
	}

	switch code {
	case pkexecDismissed, pkexecNotAuthorized:
		return -1, errors.Wrap(errors.ErrElevationDenied, "ELV004", fmt.Sprintf("pkexec 退出碼 %d", code))
	}
	return code, nil
}
