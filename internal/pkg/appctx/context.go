package appctx

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// 固定的目錄與文件名
const (
	GUIConfigFileName      = "config.json"
	ModLoaderDirName       = "Nylon"
	ModsDirName            = "mods"
	LoaderConfigFileName   = "config.json"
	LoaderManifestFileName = "manifest.yaml"
	GameExecutableName     = "GH3.exe"

	saveVendorDir = "Aspyr"
	saveGameDir   = "Guitar Hero III"
)

// Paths 定義與遊戲目錄無關的進程級路徑
type Paths struct {
	WorkDir       string
	GUIConfigFile string
	LogDir        string
	TempRoot      string
	AppDataDir    string
	SaveDir       string
}

// PathSet 由遊戲目錄推導出的路徑
// 遊戲目錄可能在啟動過程中被重新選擇，因此每次使用前都應通過 Paths.Resolve 重新計算
type PathSet struct {
	GameDir            string
	GameExecutable     string
	ModLoaderDir       string
	ModsDir            string
	LoaderConfigFile   string
	LoaderManifestFile string
	SaveDir            string
}

func NewPaths(workDir string) (*Paths, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("無法獲取工作目錄: %w", err)
		}
		workDir = wd
	}

	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("無法解析絕對路徑: %w", err)
	}

	appData := xdg.DataHome

	paths := &Paths{
		WorkDir:       absPath,
		GUIConfigFile: filepath.Join(absPath, GUIConfigFileName),
		LogDir:        filepath.Join(absPath, "logs"),
		TempRoot:      filepath.Join(os.TempDir(), "nylon-gui"),
		AppDataDir:    appData,
		SaveDir:       filepath.Join(appData, saveVendorDir, saveGameDir),
	}

	if err := os.MkdirAll(paths.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("無法創建目錄 %s: %w", paths.LogDir, err)
	}

	return paths, nil
}

// Resolve 根據遊戲目錄計算派生路徑（純函數）
func (p *Paths) Resolve(gameDir string) PathSet {
	loaderDir := filepath.Join(gameDir, ModLoaderDirName)
	return PathSet{
		GameDir:            gameDir,
		GameExecutable:     filepath.Join(gameDir, GameExecutableName),
		ModLoaderDir:       loaderDir,
		ModsDir:            filepath.Join(loaderDir, ModsDirName),
		LoaderConfigFile:   filepath.Join(loaderDir, LoaderConfigFileName),
		LoaderManifestFile: filepath.Join(loaderDir, LoaderManifestFileName),
		SaveDir:            p.SaveDir,
	}
}
