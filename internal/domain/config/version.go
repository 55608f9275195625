package config

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	// GUIConfigVersionLatest 最新 GUI 配置版本
	GUIConfigVersionLatest = 2
	// GUIConfigVersionV1 舊版 GUI 只保存了 GH3Directory
	GUIConfigVersionV1 = 1

	LoaderConfigVersionLatest = 1
)

// Migrator 配置遷移器
type Migrator struct{}

// NewMigrator 創建遷移器
func NewMigrator() *Migrator {
	return &Migrator{}
}

// NeedsMigration 檢查是否需要遷移
func (m *Migrator) NeedsMigration(cfg *GUIConfig) bool {
	if cfg == nil {
		return false
	}
	return cfg.ConfigVersion < GUIConfigVersionLatest
}

// MigrateGUI 自動遷移到最新版本
func (m *Migrator) MigrateGUI(cfg *GUIConfig) (*GUIConfig, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置為空，無法遷移")
	}

	if cfg.ConfigVersion > GUIConfigVersionLatest {
		return nil, fmt.Errorf("配置版本過高 (v%d)，當前程序僅支持 v%d", cfg.ConfigVersion, GUIConfigVersionLatest)
	}
	if cfg.ConfigVersion == GUIConfigVersionLatest {
		return cfg, nil
	}

	// V1 -> V2
	newCfg := cfg.DeepCopy()
	newCfg.ConfigVersion = GUIConfigVersionLatest

	if _, err := uuid.Parse(newCfg.InstallID); err != nil {
		newCfg.InstallID = uuid.New().String()
	}
	if newCfg.UpdateChannel == "" {
		newCfg.UpdateChannel = ChannelStable
	}
	// V1 沒有此開關，默認開啟
	newCfg.CheckForUpdates = true

	return newCfg, nil
}
