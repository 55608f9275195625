package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Yat-Muk/nylon-gui/internal/pkg/errors"
	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
	"go.uber.org/zap"
)

// validatable 文檔類型可選實現的校驗接口
type validatable interface {
	Validate() error
}

// FileRepository 基於文件的 JSON 文檔倉庫
// 讀取時容忍註釋與尾隨逗號，寫入使用原子替換
type FileRepository[T any] struct {
	fs       afero.Fs
	filePath string
	fileMu   sync.Mutex
	logger   *zap.Logger
}

func NewFileRepository[T any](fs afero.Fs, path string, logger *zap.Logger) *FileRepository[T] {
	return &FileRepository[T]{
		fs:       fs,
		filePath: path,
		logger:   logger,
	}
}

// Path 返回文檔路徑
func (r *FileRepository[T]) Path() string {
	return r.filePath
}

// Exists 報告文檔是否存在，無法確定時視為不存在
func (r *FileRepository[T]) Exists() bool {
	ok, err := afero.Exists(r.fs, r.filePath)
	if err != nil {
		r.logger.Warn("檢查配置文件狀態失敗", zap.String("path", r.filePath), zap.Error(err))
		return false
	}
	return ok
}

// Read 讀取並解析文檔
// 文件不存在時返回 ErrConfigNotFound，調用方應先寫入默認值
func (r *FileRepository[T]) Read(ctx context.Context) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.fileMu.Lock()
	content, err := afero.ReadFile(r.fs, r.filePath)
	r.fileMu.Unlock()

	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrConfigNotFound, "CONFIG_NOT_FOUND", r.filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("讀取配置文件失敗: %w", err)
	}

	doc := new(T)
	if err := json.Unmarshal(jsonc.ToJSON(content), doc); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParseFailed, "CONFIG_PARSE", fmt.Sprintf("%s: %v", r.filePath, err))
	}

	if v, ok := any(doc).(validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrConfigInvalid, "CONFIG_INVALID", err.Error())
		}
	}

	r.logger.Debug("配置文件已加載", zap.String("path", r.filePath))
	return doc, nil
}

// Write 保存文檔（原子寫入）
func (r *FileRepository[T]) Write(ctx context.Context, doc *T) error {
	if doc == nil {
		return fmt.Errorf("配置對象為空")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失敗: %w", err)
	}
	data = append(data, '\n')

	r.fileMu.Lock()
	defer r.fileMu.Unlock()

	// 步驟：創建臨時文件 -> 寫入數據 -> Sync -> 關閉 -> Rename
	dir := filepath.Dir(r.filePath)
	if err := r.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("創建配置目錄失敗: %w", err)
	}

	tmpFile, err := afero.TempFile(r.fs, dir, filepath.Base(r.filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("創建臨時文件失敗: %w", err)
	}
	tmpName := tmpFile.Name()

	writeSuccess := false
	defer func() {
		if !writeSuccess {
			tmpFile.Close()
			r.fs.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("寫入數據失敗: %w", err)
	}

	// 強制落盤
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("同步磁盤失敗: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("關閉臨時文件失敗: %w", err)
	}

	if err := r.fs.Rename(tmpName, r.filePath); err != nil {
		return fmt.Errorf("替換配置文件失敗: %w", err)
	}

	if err := r.fs.Chmod(r.filePath, 0644); err != nil {
		r.logger.Warn("設置文件權限失敗", zap.Error(err))
	}

	writeSuccess = true

	r.logger.Info("配置文件已保存", zap.String("path", r.filePath))
	return nil
}
