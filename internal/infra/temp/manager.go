package temp

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const sharedRootMode = os.ModeSticky | 0777

// Manager 管理本次進程的臨時目錄
// Cleanup 可重複調用，未 Init 時調用也是安全的
type Manager struct {
	fs     afero.Fs
	root   string
	logger *zap.Logger

	mu  sync.Mutex
	dir string
}

func NewManager(fs afero.Fs, root string, logger *zap.Logger) *Manager {
	return &Manager{
		fs:     fs,
		root:   root,
		logger: logger,
	}
}

// Init 創建 <root>/<uuid> 會話目錄
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dir != "" {
		return nil
	}

	if err := m.ensureRoot(); err != nil {
		return err
	}

	dir := filepath.Join(m.root, uuid.NewString())
	if err := m.fs.Mkdir(dir, 0700); err != nil {
		return fmt.Errorf("創建臨時目錄失敗: %w", err)
	}

	m.dir = dir
	m.logger.Debug("臨時目錄已創建", zap.String("dir", dir))
	return nil
}

// ensureRoot 根目錄由所有用戶共享，與系統臨時目錄一樣使用 sticky 位
func (m *Manager) ensureRoot() error {
	exists, err := afero.DirExists(m.fs, m.root)
	if err != nil {
		return fmt.Errorf("檢查臨時根目錄失敗: %w", err)
	}
	if exists {
		return nil
	}

	if err := m.fs.MkdirAll(m.root, 0755); err != nil {
		return fmt.Errorf("創建臨時根目錄失敗: %w", err)
	}
	if err := m.fs.Chmod(m.root, sharedRootMode); err != nil {
		return fmt.Errorf("設置臨時根目錄權限失敗: %w", err)
	}
	return nil
}

// Dir 返回會話目錄，未初始化時為空
func (m *Manager) Dir() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dir
}

// CreateFile 在會話目錄中創建臨時文件
func (m *Manager) CreateFile(pattern string) (afero.File, error) {
	dir := m.Dir()
	if dir == "" {
		return nil, fmt.Errorf("臨時目錄尚未初始化")
	}
	return afero.TempFile(m.fs, dir, pattern)
}

// Cleanup 刪除會話目錄
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dir == "" {
		return
	}

	if err := m.fs.RemoveAll(m.dir); err != nil {
		m.logger.Warn("清理臨時目錄失敗", zap.String("dir", m.dir), zap.Error(err))
		return
	}

	m.logger.Debug("臨時目錄已清理", zap.String("dir", m.dir))
	m.dir = ""
}
