package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestWrap 測試Wrap函數
func TestWrap(t *testing.T) {
	t.Run("保留原錯誤", func(t *testing.T) {
		wrapped := Wrap(ErrElevationFailed, "ELV002", "ShellExecuteExW")
		assert.True(t, errors.Is(wrapped, ErrElevationFailed))
		assert.Contains(t, wrapped.Error(), "ELV002")
		assert.Contains(t, wrapped.Error(), "ShellExecuteExW")
	})

	t.Run("Wrap nil 仍返回錯誤", func(t *testing.T) {
		wrapped := Wrap(nil, "CFG001", "context")
		assert.Error(t, wrapped)
		assert.Equal(t, "[CFG001] context", wrapped.Error())
	})

	t.Run("多層包裝", func(t *testing.T) {
		err1 := New("UPD001", "download failed")
		err2 := Wrap(err1, "UPD002", "install failed")
		err3 := fmt.Errorf("bootstrap: %w", err2)

		assert.True(t, errors.Is(err3, err1))
		assert.True(t, errors.Is(err3, err2))
	})
}

// TestNew 測試New函數
func TestNew(t *testing.T) {
	err := New("SYS001", "命令不在白名單中")
	assert.Equal(t, "[SYS001] 命令不在白名單中", err.Error())

	// 兩次調用New即使參數相同，也是不同的錯誤對象
	assert.False(t, errors.Is(err, New("SYS001", "命令不在白名單中")))
}

// TestCodeOf 測試錯誤代碼提取
func TestCodeOf(t *testing.T) {
	t.Run("直接錯誤", func(t *testing.T) {
		assert.Equal(t, "ELV001", CodeOf(Wrap(ErrElevationDenied, "ELV001", "relaunch")))
	})

	t.Run("fmt 包裝後仍可提取", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New("CFG002", "write failed"))
		assert.Equal(t, "CFG002", CodeOf(err))
	})

	t.Run("標準錯誤返回空", func(t *testing.T) {
		assert.Empty(t, CodeOf(errors.New("plain")))
		assert.Empty(t, CodeOf(nil))
	})

	t.Run("哨兵錯誤可通過 Is 判斷", func(t *testing.T) {
		err := Wrap(ErrNoTerminal, "TUI001", "confirm")
		assert.True(t, errors.Is(err, ErrNoTerminal))
		assert.False(t, errors.Is(err, ErrPromptCancelled))
	})
}
