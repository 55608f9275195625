package application

import (
	"context"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/Yat-Muk/nylon-gui/internal/domain/bootstrap"
	"github.com/Yat-Muk/nylon-gui/internal/infra/permission"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/logger"
)

// AccessProbe 授權前後的權限探測
type AccessProbe interface {
	IsPrivilegedUser() bool
	CheckAs(path string, right permission.Right, id permission.Identity) permission.Outcome
}

// AccessService 提權後執行的一次性授權動作，不顯示任何界面
type AccessService struct {
	fs      afero.Fs
	probe   AccessProbe
	granter permission.Granter
	logger  *zap.Logger
}

func NewAccessService(fs afero.Fs, probe AccessProbe, granter permission.Granter, logger *zap.Logger) *AccessService {
	return &AccessService{
		fs:      fs,
		probe:   probe,
		granter: granter,
		logger:  logger,
	}
}

// SetAccess 為配置中的遊戲目錄授予普通用戶寫入權限
// 重複執行是安全的
func (s *AccessService) SetAccess(ctx context.Context, session *bootstrap.Session) bootstrap.ExitCode {
	if !s.probe.IsPrivilegedUser() {
		s.logger.Error("授權動作需要管理員權限")
		return bootstrap.ExitPrivilegeNotHeld
	}

	dir := session.GUI.GameDirectory
	if dir == "" {
		s.logger.Error("配置中沒有遊戲目錄")
		return bootstrap.ExitFailure
	}
	if ok, err := afero.DirExists(s.fs, dir); err != nil || !ok {
		s.logger.Error("遊戲目錄不存在", logger.Path("dir", dir), zap.Error(err))
		return bootstrap.ExitFailure
	}

	id, err := s.granter.Grant(ctx, dir)
	if err != nil {
		s.logger.Error("授權失敗", logger.Path("dir", dir), zap.Error(err))
		return bootstrap.ExitFailure
	}

	out := s.probe.CheckAs(dir, permission.WriteTarget, id)
	if !out.Allowed() {
		s.logger.Error("授權後仍無寫入權限", logger.Path("dir", dir), zap.Stringer("outcome", out))
		return bootstrap.ExitFailure
	}

	s.logger.Info("遊戲目錄授權完成", logger.Path("dir", dir))
	return bootstrap.ExitSuccess
}
