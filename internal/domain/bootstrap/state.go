package bootstrap

// State 啟動狀態機的各個關卡，按順序執行
type State int

const (
	StateConfigLoad State = iota
	StateDirectoryResolution
	StatePermissionGate
	StateModLoaderDetection
	StateModsDirectoryEnsure
	StateModLoaderConfigLoad
	StateLaunch
)

var stateNames = map[State]string{
	StateConfigLoad:          "ConfigLoad",
	StateDirectoryResolution: "DirectoryResolution",
	StatePermissionGate:      "PermissionGate",
	StateModLoaderDetection:  "ModLoaderDetection",
	StateModsDirectoryEnsure: "ModsDirectoryEnsure",
	StateModLoaderConfigLoad: "ModLoaderConfigLoad",
	StateLaunch:              "Launch",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Next 返回下一個狀態，StateLaunch 之後沒有狀態
func (s State) Next() (State, bool) {
	if s >= StateLaunch {
		return s, false
	}
	return s + 1, true
}
