package appctx

import "os"

// 環境變量名
const (
	EnvWorkDir     = "NYLON_WORK_DIR"
	EnvLogLevel    = "NYLON_LOG_LEVEL"
	EnvUpdateAPI   = "NYLON_UPDATE_API"
	EnvGitHubToken = "NYLON_GITHUB_TOKEN"
)

const DefaultUpdateAPI = "https://api.github.com"

// Environment 進程級運行參數
// 任何命令行參數都會讓程序進入參數處理路徑，所以交互路徑的設置只能來自環境變量
type Environment struct {
	WorkDir     string
	LogLevel    string
	UpdateAPI   string
	GitHubToken string
}

// LoadEnvironment 從環境變量讀取運行參數
func LoadEnvironment() Environment {
	env := Environment{
		WorkDir:     os.Getenv(EnvWorkDir),
		LogLevel:    os.Getenv(EnvLogLevel),
		UpdateAPI:   os.Getenv(EnvUpdateAPI),
		GitHubToken: os.Getenv(EnvGitHubToken),
	}
	if env.LogLevel == "" {
		env.LogLevel = "info"
	}
	if env.UpdateAPI == "" {
		env.UpdateAPI = DefaultUpdateAPI
	}
	return env
}
