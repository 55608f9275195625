package mods

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/Yat-Muk/nylon-gui/internal/domain/config"
)

// Mod mods 目錄中的一個模組（子目錄或單個 dll）
type Mod struct {
	Name    string
	Path    string
	Size    int64
	Enabled bool
}

// Catalog 掃描 mods 目錄
type Catalog struct {
	fs afero.Fs
}

func NewCatalog(fs afero.Fs) *Catalog {
	return &Catalog{fs: fs}
}

// List 列出模組，按名稱排序；目錄不存在時返回空列表
func (c *Catalog) List(dir string, cfg *config.LoaderConfig) ([]Mod, error) {
	entries, err := afero.ReadDir(c.fs, dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("讀取 mods 目錄失敗: %w", err)
	}

	var mods []Mod
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(dir, name)
		mod := Mod{Name: name, Path: path}

		switch {
		case e.IsDir():
			size, err := c.dirSize(path)
			if err != nil {
				return nil, err
			}
			mod.Size = size
		case strings.EqualFold(filepath.Ext(name), ".dll"):
			mod.Name = strings.TrimSuffix(name, filepath.Ext(name))
			mod.Size = e.Size()
		default:
			continue
		}

		mod.Enabled = cfg == nil || cfg.IsModEnabled(mod.Name)
		mods = append(mods, mod)
	}

	sort.Slice(mods, func(i, j int) bool {
		return strings.ToLower(mods[i].Name) < strings.ToLower(mods[j].Name)
	})
	return mods, nil
}

func (c *Catalog) dirSize(dir string) (int64, error) {
	var total int64
	err := afero.Walk(c.fs, dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("統計 %s 大小失敗: %w", dir, err)
	}
	return total, nil
}
