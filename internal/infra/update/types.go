package update

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-version"
)

// State 檢查結果
type State int

const (
	NotInstalled State = iota
	UpdateAvailable
	UpToDate
)

func (s State) String() string {
	switch s {
	case NotInstalled:
		return "NotInstalled"
	case UpdateAvailable:
		return "UpdateAvailable"
	case UpToDate:
		return "UpToDate"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Release GitHub release 的必要字段
type Release struct {
	TagName    string  `json:"tag_name"`
	Name       string  `json:"name"`
	Draft      bool    `json:"draft"`
	Prerelease bool    `json:"prerelease"`
	Assets     []Asset `json:"assets"`
}

// Asset 的 Digest 形如 "sha256:<hex>"，舊版 release 可能沒有
type Asset struct {
	Name   string `json:"name"`
	URL    string `json:"browser_download_url"`
	Size   int64  `json:"size"`
	Digest string `json:"digest,omitempty"`
}

// UpdateStatus 一次檢查的結果，Installed 為 nil 表示未安裝
type UpdateStatus struct {
	State     State
	Installed *version.Version
	Latest    *version.Version
	Asset     Asset
}

func (s *UpdateStatus) String() string {
	installed := "none"
	if s.Installed != nil {
		installed = s.Installed.String()
	}
	return fmt.Sprintf("%s (installed=%s, latest=%s)", s.State, installed, s.Latest)
}

// Manifest 安裝記錄，保存於 Nylon/manifest.yaml
type Manifest struct {
	Version     string    `yaml:"version"`
	Asset       string    `yaml:"asset"`
	SHA256      string    `yaml:"sha256"`
	InstalledAt time.Time `yaml:"installed_at"`
	Files       []string  `yaml:"files,omitempty"`
}
