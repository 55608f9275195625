package permission

import (
	"strings"
)

// Right 文件系統訪問權限位，取值與 Windows FileSystemRights 一致
type Right uint32

const (
	ReadData                     Right = 0x000001
	WriteData                    Right = 0x000002
	CreateDirectories            Right = 0x000004
	ReadExtendedAttributes       Right = 0x000008
	WriteExtendedAttributes      Right = 0x000010
	Traverse                     Right = 0x000020
	DeleteSubdirectoriesAndFiles Right = 0x000040
	ReadAttributes               Right = 0x000080
	WriteAttributes              Right = 0x000100
	Delete                       Right = 0x010000
	ReadPermissions              Right = 0x020000
	ChangePermissions            Right = 0x040000
	TakeOwnership                Right = 0x080000
	Synchronize                  Right = 0x100000

	// 目錄下創建文件與 WriteData 同位
	CreateFiles = WriteData

	Read        = ReadData | ReadExtendedAttributes | ReadAttributes | ReadPermissions | Synchronize
	Write       = WriteData | CreateDirectories | WriteExtendedAttributes | WriteAttributes | Synchronize
	FullControl Right = 0x1F01FF

	// WriteTarget 寫入目標目錄所需的權限
	WriteTarget = WriteData | CreateDirectories
)

// 通用權限位
const (
	genericRead    = 0x80000000
	genericWrite   = 0x40000000
	genericExecute = 0x20000000
	genericAll     = 0x10000000

	fileGenericRead    Right = 0x120089
	fileGenericWrite   Right = 0x120116
	fileGenericExecute Right = 0x1200A0
)

// Contains 報告 r 是否包含 req 的全部權限位
func (r Right) Contains(req Right) bool {
	return r&req == req
}

// MapGeneric 將通用權限位展開為文件權限位
func MapGeneric(mask uint32) Right {
	r := Right(mask & 0x0FFFFFFF)
	if mask&genericRead != 0 {
		r |= fileGenericRead
	}
	if mask&genericWrite != 0 {
		r |= fileGenericWrite
	}
	if mask&genericExecute != 0 {
		r |= fileGenericExecute
	}
	if mask&genericAll != 0 {
		r |= FullControl
	}
	return r
}

var rightNames = []struct {
	right Right
	name  string
}{
	{ReadData, "ReadData"},
	{WriteData, "WriteData"},
	{CreateDirectories, "CreateDirectories"},
	{ReadExtendedAttributes, "ReadExtendedAttributes"},
	{WriteExtendedAttributes, "WriteExtendedAttributes"},
	{Traverse, "Traverse"},
	{DeleteSubdirectoriesAndFiles, "DeleteSubdirectoriesAndFiles"},
	{ReadAttributes, "ReadAttributes"},
	{WriteAttributes, "WriteAttributes"},
	{Delete, "Delete"},
	{ReadPermissions, "ReadPermissions"},
	{ChangePermissions, "ChangePermissions"},
	{TakeOwnership, "TakeOwnership"},
	{Synchronize, "Synchronize"},
}

func (r Right) String() string {
	if r == 0 {
		return "None"
	}
	if r.Contains(FullControl) {
		return "FullControl"
	}
	var parts []string
	for _, n := range rightNames {
		if r&n.right != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
