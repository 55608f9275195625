package locator

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
)

const gameFolder = "Guitar Hero III"

// DefaultCandidates 常見的遊戲安裝位置
func DefaultCandidates() []string {
	var dirs []string

	if runtime.GOOS == "windows" {
		for _, env := range []string{"ProgramFiles(x86)", "ProgramFiles"} {
			root := os.Getenv(env)
			if root == "" {
				continue
			}
			dirs = append(dirs,
				filepath.Join(root, "Aspyr", gameFolder),
				filepath.Join(root, "Steam", "steamapps", "common", gameFolder),
			)
		}
		return dirs
	}

	// Proton / Wine 安裝
	dirs = append(dirs, filepath.Join(xdg.DataHome, "Steam", "steamapps", "common", gameFolder))
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(home, ".steam", "steam", "steamapps", "common", gameFolder),
			filepath.Join(home, ".wine", "drive_c", "Program Files (x86)", "Aspyr", gameFolder),
		)
	}
	return dirs
}
