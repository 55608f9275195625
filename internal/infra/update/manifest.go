package update

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-version"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ReadManifest 讀取安裝記錄，文件不存在時返回 (nil, nil)
func ReadManifest(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("讀取安裝記錄失敗: %w", err)
	}

	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("解析安裝記錄失敗: %w", err)
	}
	return m, nil
}

// WriteManifest 寫入安裝記錄
func WriteManifest(fs afero.Fs, path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("序列化安裝記錄失敗: %w", err)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, 0644); err != nil {
		return fmt.Errorf("寫入安裝記錄失敗: %w", err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		fs.Remove(tmp)
		return fmt.Errorf("替換安裝記錄失敗: %w", err)
	}
	return nil
}

// InstalledVersion 返回已安裝版本，未安裝時為 nil
func InstalledVersion(fs afero.Fs, manifestPath string) (*version.Version, error) {
	m, err := ReadManifest(fs, manifestPath)
	if err != nil || m == nil {
		return nil, err
	}
	v, err := version.NewVersion(m.Version)
	if err != nil {
		return nil, fmt.Errorf("安裝記錄中的版本號無效 %q: %w", m.Version, err)
	}
	return v, nil
}
