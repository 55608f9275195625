package errors

import (
	"errors"
	"fmt"
)

// 預定義錯誤類型
var (
	// 配置相關
	ErrConfigNotFound    = errors.New("configuration file not found")
	ErrConfigInvalid     = errors.New("configuration is invalid")
	ErrConfigParseFailed = errors.New("failed to parse configuration")

	// 權限與提權
	ErrPermissionDenied = errors.New("permission denied")
	ErrElevationDenied  = errors.New("elevation was denied by the operator")
	ErrElevationFailed  = errors.New("elevated relaunch could not be started")

	// 交互提示
	ErrNoTerminal      = errors.New("no interactive terminal available")
	ErrPromptCancelled = errors.New("prompt was cancelled")
	ErrLocatorAborted  = errors.New("game directory selection aborted")

	// 更新與安裝
	ErrNoReleaseAsset = errors.New("release has no installable asset")
	ErrArchiveInvalid = errors.New("release archive is invalid")
	ErrDigestMismatch = errors.New("downloaded archive does not match the published digest")

	// 系統相關
	ErrCommandNotAllowed = errors.New("command is not allowed")
	ErrCommandFailed     = errors.New("command execution failed")
)

// Error 自定義錯誤類型
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 創建新錯誤
func New(code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap 包裝錯誤
func Wrap(err error, code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf 返回錯誤鏈上第一個自定義錯誤的代碼，沒有則返回空字符串
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
