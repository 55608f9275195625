package logger

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// SafeLogger 安全日誌接口
type SafeLogger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
}

// 敏感信息正則模式
var (
	githubTokenRegex = regexp.MustCompile(`\b(ghp|gho|ghu|ghs|ghr)_[A-Za-z0-9]{20,}\b|\bgithub_pat_[A-Za-z0-9_]{20,}\b`)
	bearerRegex      = regexp.MustCompile(`(?i)(bearer|token)\s+[A-Za-z0-9._~+/=-]{8,}`)
	authHeaderRegex  = regexp.MustCompile(`(?i)(authorization)\s*[:=]\s*['"]?[^'"\s,]+(\s+[^'"\s,]+)?['"]?`)
)

// MaskSensitive 脫敏敏感信息
func MaskSensitive(input string) string {
	input = githubTokenRegex.ReplaceAllString(input, "***MASKED***")
	input = authHeaderRegex.ReplaceAllString(input, "${1}: ***MASKED***")
	input = bearerRegex.ReplaceAllString(input, "${1} ***MASKED***")
	return MaskHome(input)
}

// MaskHome 將用戶主目錄替換為 ~，避免日誌洩露用戶名
func MaskHome(input string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" || home == "/" {
		return input
	}
	return strings.ReplaceAll(input, home, "~")
}

// SafeLoggerImpl 安全日誌實現
type SafeLoggerImpl struct {
	logger *zap.SugaredLogger
}

func (sl *SafeLoggerImpl) Debugf(format string, args ...interface{}) {
	sl.logger.Debug(MaskSensitive(fmt.Sprintf(format, args...)))
}

func (sl *SafeLoggerImpl) Infof(format string, args ...interface{}) {
	sl.logger.Info(MaskSensitive(fmt.Sprintf(format, args...)))
}

func (sl *SafeLoggerImpl) Warnf(format string, args ...interface{}) {
	sl.logger.Warn(MaskSensitive(fmt.Sprintf(format, args...)))
}

func (sl *SafeLoggerImpl) Errorf(format string, args ...interface{}) {
	sl.logger.Error(MaskSensitive(fmt.Sprintf(format, args...)))
}

func (sl *SafeLoggerImpl) Infow(msg string, keysAndValues ...interface{}) {
	safeFields := make([]interface{}, 0, len(keysAndValues))

	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 >= len(keysAndValues) {
			safeFields = append(safeFields, keysAndValues[i])
			break
		}
		key := fmt.Sprintf("%v", keysAndValues[i])
		lower := strings.ToLower(key)
		if strings.Contains(lower, "token") || strings.Contains(lower, "secret") || strings.Contains(lower, "authorization") {
			safeFields = append(safeFields, key, "***MASKED***")
			continue
		}
		safeFields = append(safeFields, key, MaskSensitive(fmt.Sprintf("%v", keysAndValues[i+1])))
	}

	sl.logger.Infow(MaskSensitive(msg), safeFields...)
}

// NewSafeLogger 創建安全日誌
func NewSafeLogger(logger *zap.Logger) SafeLogger {
	return &SafeLoggerImpl{logger: logger.Sugar()}
}
