//go:build windows

package permission

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// ACL 與 ACE 的內存佈局（winnt.h）
type aclHeader struct {
	Revision byte
	Sbz1     byte
	Size     uint16
	AceCount uint16
	Sbz2     uint16
}

type aceHeader struct {
	Type  byte
	Flags byte
	Size  uint16
}

type accessAce struct {
	Header   aceHeader
	Mask     uint32
	SidStart uint32
}

const (
	accessAllowedAceType = 0x0
	accessDeniedAceType  = 0x1
	inheritOnlyAce       = 0x8

	seGroupUseForDenyOnly = 0x10
)

type windowsACLReader struct{}

func newSystemACLReader() ACLReader {
	return windowsACLReader{}
}

// ReadRules 遍歷目錄的 DACL
func (windowsACLReader) ReadRules(path string) ([]AccessRule, error) {
	sd, err := windows.GetNamedSecurityInfo(path, windows.SE_FILE_OBJECT, windows.DACL_SECURITY_INFORMATION)
	if err != nil {
		return nil, fmt.Errorf("GetNamedSecurityInfo: %w", err)
	}

	dacl, _, err := sd.DACL()
	if err != nil {
		return nil, fmt.Errorf("讀取 DACL 失敗: %w", err)
	}

	// 空 DACL 允許所有訪問
	if dacl == nil {
		return []AccessRule{{Subject: Everyone, Rights: FullControl, Allow: true}}, nil
	}

	hdr := (*aclHeader)(unsafe.Pointer(dacl))
	rules := make([]AccessRule, 0, hdr.AceCount)

	p := unsafe.Add(unsafe.Pointer(dacl), unsafe.Sizeof(aclHeader{}))
	for i := 0; i < int(hdr.AceCount); i++ {
		ace := (*accessAce)(p)
		if ace.Header.Size == 0 {
			return nil, fmt.Errorf("第 %d 條 ACE 長度為 0", i)
		}

		isAllow := ace.Header.Type == accessAllowedAceType
		isDeny := ace.Header.Type == accessDeniedAceType

		// 僅繼承的 ACE 不作用於目錄自身
		if (isAllow || isDeny) && ace.Header.Flags&inheritOnlyAce == 0 {
			sid := (*windows.SID)(unsafe.Pointer(&ace.SidStart))
			rules = append(rules, AccessRule{
				Subject: sid.String(),
				Rights:  MapGeneric(ace.Mask),
				Allow:   isAllow,
			})
		}

		p = unsafe.Add(p, ace.Header.Size)
	}

	return rules, nil
}

type windowsIdentity struct{}

func newSystemIdentity() IdentitySource {
	return windowsIdentity{}
}

// Current 返回令牌用戶與有效組（排除僅用於拒絕的組）
func (windowsIdentity) Current() (Identity, error) {
	var token windows.Token
	if err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_QUERY, &token); err != nil {
		return Identity{}, fmt.Errorf("打開進程令牌失敗: %w", err)
	}
	defer token.Close()

	tu, err := token.GetTokenUser()
	if err != nil {
		return Identity{}, fmt.Errorf("讀取令牌用戶失敗: %w", err)
	}

	tg, err := token.GetTokenGroups()
	if err != nil {
		return Identity{}, fmt.Errorf("讀取令牌組失敗: %w", err)
	}

	groups := []string{tu.User.Sid.String()}
	for _, g := range tg.AllGroups() {
		if g.Attributes&seGroupUseForDenyOnly != 0 {
			continue
		}
		groups = append(groups, g.Sid.String())
	}

	return Identity{Groups: groups}, nil
}

func (windowsIdentity) IsPrivileged() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
