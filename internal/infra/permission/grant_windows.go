//go:build windows

package permission

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/Yat-Muk/nylon-gui/internal/infra/system"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/logger"
)

type windowsGranter struct {
	logger *zap.Logger
}

// NewGranter 創建授權器，Windows 直接修改 DACL，不需要外部命令
func NewGranter(_ system.Executor, logger *zap.Logger) Granter {
	return &windowsGranter{logger: logger}
}

// Grant 在現有 DACL 上合併一條 BUILTIN\Users 可繼承的讀寫執行 ACE
func (g *windowsGranter) Grant(ctx context.Context, dir string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	sd, err := windows.GetNamedSecurityInfo(dir, windows.SE_FILE_OBJECT, windows.DACL_SECURITY_INFORMATION)
	if err != nil {
		return Identity{}, fmt.Errorf("讀取目錄安全信息失敗: %w", err)
	}
	current, _, err := sd.DACL()
	if err != nil {
		return Identity{}, fmt.Errorf("讀取 DACL 失敗: %w", err)
	}

	usersSid, err := windows.CreateWellKnownSid(windows.WinBuiltinUsersSid)
	if err != nil {
		return Identity{}, fmt.Errorf("創建 Users SID 失敗: %w", err)
	}

	explicitAccess := []windows.EXPLICIT_ACCESS{
		{
			AccessPermissions: windows.GENERIC_READ | windows.GENERIC_WRITE | windows.GENERIC_EXECUTE,
			AccessMode:        windows.GRANT_ACCESS,
			Inheritance:       windows.SUB_CONTAINERS_AND_OBJECTS_INHERIT,
			Trustee: windows.TRUSTEE{
				MultipleTrusteeOperation: windows.NO_MULTIPLE_TRUSTEE,
				TrusteeForm:              windows.TRUSTEE_IS_SID,
				TrusteeType:              windows.TRUSTEE_IS_WELL_KNOWN_GROUP,
				TrusteeValue:             windows.TrusteeValueFromSID(usersSid),
			},
		},
	}

	dacl, err := windows.ACLFromEntries(explicitAccess, current)
	if err != nil {
		return Identity{}, fmt.Errorf("合併 ACL 失敗: %w", err)
	}

	if err := windows.SetNamedSecurityInfo(dir, windows.SE_FILE_OBJECT, windows.DACL_SECURITY_INFORMATION, nil, nil, dacl, nil); err != nil {
		return Identity{}, fmt.Errorf("寫入 DACL 失敗: %w", err)
	}

	g.logger.Info("已授予 Users 組目錄訪問權限", logger.Path("dir", dir))
	return Identity{Groups: []string{usersSid.String()}}, nil
}
