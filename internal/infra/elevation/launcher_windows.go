//go:build windows

package elevation

import (
	"context"
	stderrors "errors"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/Yat-Muk/nylon-gui/internal/pkg/errors"
)

const (
	seeMaskNoCloseProcess = 0x00000040
	seeMaskNoAsync        = 0x00000100
	swShowNormal          = 1

	waitPollMillis = 200
)

// shellExecuteInfo SHELLEXECUTEINFOW
type shellExecuteInfo struct {
	cbSize         uint32
	fMask          uint32
	hwnd           windows.Handle
	lpVerb         *uint16
	lpFile         *uint16
	lpParameters   *uint16
	lpDirectory    *uint16
	nShow          int32
	hInstApp       windows.Handle
	lpIDList       uintptr
	lpClass        *uint16
	hkeyClass      windows.Handle
	dwHotKey       uint32
	hIconOrMonitor windows.Handle
	hProcess       windows.Handle
}

var procShellExecuteExW = windows.NewLazySystemDLL("shell32.dll").NewProc("ShellExecuteExW")

// launch 通過 runas 動詞觸發 UAC 提示
func (l *Launcher) launch(ctx context.Context, req Request) (int, error) {
	verb, _ := windows.UTF16PtrFromString("runas")
	file, err := windows.UTF16PtrFromString(req.Executable)
	if err != nil {
		return -1, errors.Wrap(errors.ErrElevationFailed, "ELV003", err.Error())
	}
	params, _ := windows.UTF16PtrFromString(req.Marker)
	dir, _ := windows.UTF16PtrFromString(req.WorkDir)

	info := shellExecuteInfo{
		fMask:        seeMaskNoCloseProcess | seeMaskNoAsync,
		lpVerb:       verb,
		lpFile:       file,
		lpParameters: params,
		lpDirectory:  dir,
		nShow:        swShowNormal,
	}
	info.cbSize = uint32(unsafe.Sizeof(info))

	r1, _, e1 := procShellExecuteExW.Call(uintptr(unsafe.Pointer(&info)))
	if r1 == 0 {
		if stderrors.Is(e1, windows.ERROR_CANCELLED) {
			return -1, errors.Wrap(errors.ErrElevationDenied, "ELV004", "操作者取消了 UAC 提示")
		}
		return -1, errors.Wrap(errors.ErrElevationFailed, "ELV003", e1.Error())
	}
	if info.hProcess == 0 {
		return -1, errors.Wrap(errors.ErrElevationFailed, "ELV003", "未獲得子進程句柄")
	}
	defer windows.CloseHandle(info.hProcess)

	for {
		ev, err := windows.WaitForSingleObject(info.hProcess, waitPollMillis)
		if err != nil {
			return -1, errors.Wrap(errors.ErrElevationFailed, "ELV005", err.Error())
		}
		if ev == windows.WAIT_OBJECT_0 {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return -1, ctxErr
		}
	}

	var code uint32
	if err := windows.GetExitCodeProcess(info.hProcess, &code); err != nil {
		return -1, errors.Wrap(errors.ErrElevationFailed, "ELV005", err.Error())
	}
	return int(int32(code)), nil
}
