//go:build unix

package permission

import (
	"fmt"
	"strconv"

	"golang.org/x/sys/unix"
)

// UserSubject 與 GroupSubject 是 Unix 身份在規則中的主體名
func UserSubject(uid int) string  { return "uid:" + strconv.Itoa(uid) }
func GroupSubject(gid int) string { return "gid:" + strconv.Itoa(gid) }

type unixACLReader struct{}

func newSystemACLReader() ACLReader {
	return unixACLReader{}
}

// ReadRules 將 owner/group/other 三類權限按內核的判定順序轉換為互斥規則
func (unixACLReader) ReadRules(path string) ([]AccessRule, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if uint32(st.Mode)&unix.S_IFMT != unix.S_IFDIR {
		return nil, fmt.Errorf("%s 不是目錄", path)
	}

	mode := uint32(st.Mode) & 0o777
	return []AccessRule{
		{Subject: UserSubject(int(st.Uid)), Rights: modeRights(mode >> 6), Allow: true, Exclusive: true},
		{Subject: GroupSubject(int(st.Gid)), Rights: modeRights(mode >> 3), Allow: true, Exclusive: true},
		{Subject: Everyone, Rights: modeRights(mode), Allow: true, Exclusive: true},
	}, nil
}

// modeRights 轉換一組 rwx 位
// 目錄寫入同時需要 w 與 x
func modeRights(bits uint32) Right {
	var r Right
	if bits&0o4 != 0 {
		r |= Read
	}
	if bits&0o1 != 0 {
		r |= Traverse
		if bits&0o2 != 0 {
			r |= Write | DeleteSubdirectoriesAndFiles
		}
	}
	return r
}

type unixIdentity struct{}

func newSystemIdentity() IdentitySource {
	return unixIdentity{}
}

func (unixIdentity) Current() (Identity, error) {
	groups := []string{
		UserSubject(unix.Geteuid()),
		GroupSubject(unix.Getegid()),
	}

	extra, err := unix.Getgroups()
	if err != nil {
		return Identity{}, fmt.Errorf("讀取附加組失敗: %w", err)
	}
	for _, gid := range extra {
		groups = append(groups, GroupSubject(gid))
	}

	return Identity{Groups: groups}, nil
}

func (unixIdentity) IsPrivileged() bool {
	return unix.Geteuid() == 0
}
