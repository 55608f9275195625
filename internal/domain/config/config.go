package config

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// 更新通道
const (
	ChannelStable     = "stable"
	ChannelPrerelease = "prerelease"
)

// GUIConfig 應用級設置，保存於工作目錄下的 config.json
// 字段名沿用舊版 GUI 的 PascalCase 鍵，以兼容已存在的配置文件
type GUIConfig struct {
	ConfigVersion   int    `json:"ConfigVersion"`
	GameDirectory   string `json:"GH3Directory"`
	InstallID       string `json:"InstallID,omitempty"`
	CheckForUpdates bool   `json:"CheckForUpdates"`
	UpdateChannel   string `json:"UpdateChannel"`
}

// DefaultGUIConfig 返回首次運行寫入的默認設置
func DefaultGUIConfig() *GUIConfig {
	return &GUIConfig{
		ConfigVersion:   GUIConfigVersionLatest,
		GameDirectory:   "",
		InstallID:       uuid.New().String(),
		CheckForUpdates: true,
		UpdateChannel:   ChannelStable,
	}
}

// Validate 校驗設置
// 遊戲目錄允許為空或不存在，由目錄定位流程負責修正
func (c *GUIConfig) Validate() error {
	if c.ConfigVersion > GUIConfigVersionLatest {
		return fmt.Errorf("配置版本過高 (v%d)，當前程序僅支持 v%d", c.ConfigVersion, GUIConfigVersionLatest)
	}
	if c.InstallID != "" {
		if _, err := uuid.Parse(c.InstallID); err != nil {
			return fmt.Errorf("InstallID 格式無效: %w", err)
		}
	}
	switch c.UpdateChannel {
	case "", ChannelStable, ChannelPrerelease:
	default:
		return fmt.Errorf("未知的更新通道: %q", c.UpdateChannel)
	}
	return nil
}

func (c *GUIConfig) DeepCopy() *GUIConfig {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

// LoaderConfig Nylon 自身的設置，保存於 <遊戲目錄>/Nylon/config.json
type LoaderConfig struct {
	ConfigVersion int      `json:"ConfigVersion"`
	Enabled       bool     `json:"Enabled"`
	DebugConsole  bool     `json:"DebugConsole"`
	LogLevel      string   `json:"LogLevel"`
	DisabledMods  []string `json:"DisabledMods"`
}

// DefaultLoaderConfig 返回 Nylon 的默認設置
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		ConfigVersion: LoaderConfigVersionLatest,
		Enabled:       true,
		DebugConsole:  false,
		LogLevel:      "info",
		DisabledMods:  []string{},
	}
}

// Validate 校驗設置，未寫 LogLevel 時 Nylon 按 info 處理
func (c *LoaderConfig) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("無效的日誌級別: %q", c.LogLevel)
	}
	return nil
}

func (c *LoaderConfig) DeepCopy() *LoaderConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.DisabledMods = slices.Clone(c.DisabledMods)
	return &out
}

// IsModEnabled 報告模組是否啟用
func (c *LoaderConfig) IsModEnabled(name string) bool {
	return !slices.Contains(c.DisabledMods, name)
}
