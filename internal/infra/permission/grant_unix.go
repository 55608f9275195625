//go:build unix

package permission

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Yat-Muk/nylon-gui/internal/infra/system"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/logger"
)

type unixGranter struct {
	exec   system.Executor
	lookup func(string) string
	logger *zap.Logger
}

// NewGranter 創建授權器，Unix 通過 chown 將目錄交還給發起提權的用戶
func NewGranter(exec system.Executor, logger *zap.Logger) Granter {
	return &unixGranter{
		exec:   exec,
		lookup: os.Getenv,
		logger: logger,
	}
}

// invokingOwner 從 pkexec 或 sudo 設置的環境變量中取得原用戶
func (g *unixGranter) invokingOwner() (string, error) {
	if uid := g.lookup("PKEXEC_UID"); uid != "" {
		if _, err := strconv.Atoi(uid); err != nil {
			return "", fmt.Errorf("PKEXEC_UID 無效: %q", uid)
		}
		return uid, nil
	}

	uid := g.lookup("SUDO_UID")
	if uid == "" {
		return "", fmt.Errorf("無法確定發起提權的用戶")
	}
	if _, err := strconv.Atoi(uid); err != nil {
		return "", fmt.Errorf("SUDO_UID 無效: %q", uid)
	}
	if gid := g.lookup("SUDO_GID"); gid != "" {
		if _, err := strconv.Atoi(gid); err == nil {
			return uid + ":" + gid, nil
		}
	}
	return uid, nil
}

func (g *unixGranter) Grant(ctx context.Context, dir string) (Identity, error) {
	owner, err := g.invokingOwner()
	if err != nil {
		return Identity{}, err
	}

	if _, err := g.exec.Execute(ctx, "chown", "-R", owner, dir); err != nil {
		return Identity{}, fmt.Errorf("修改目錄所有者失敗: %w", err)
	}

	g.logger.Info("已將目錄交還給用戶",
		logger.Path("dir", dir),
		zap.String("owner", owner),
	)
	return ownerIdentity(owner), nil
}

// ownerIdentity 將 uid[:gid] 轉換為規則主體
func ownerIdentity(owner string) Identity {
	uid, gid, hasGroup := strings.Cut(owner, ":")
	groups := []string{"uid:" + uid}
	if hasGroup {
		groups = append(groups, "gid:"+gid)
	}
	return Identity{Groups: groups}
}
