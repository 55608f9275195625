package permission

import (
	"context"
)

// Granter 為目錄授予普通用戶寫入權限
// 只在提權後的一次性授權進程中使用
// Grant 返回獲得授權的身份，供調用方以該身份重新探測
type Granter interface {
	Grant(ctx context.Context, dir string) (Identity, error)
}
