//go:build unix

package elevation

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yat-Muk/nylon-gui/internal/pkg/errors"
)

type fakeExecutor struct {
	code  int
	err   error
	calls [][]string
}

func (f *fakeExecutor) Execute(context.Context, string, ...string) (string, error) { return "", nil }
func (f *fakeExecutor) IsAllowed(string) bool                                      { return true }

func (f *fakeExecutor) Run(_ context.Context, name string, args ...string) (int, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.code, f.err
}

func newTestLauncher(exec *fakeExecutor) *Launcher {
	l := NewLauncher(exec, zap.NewNop())
	l.newRequest = func(marker string) (Request, error) {
		return Request{Executable: "/opt/nylon/nylon-gui", Marker: marker, WorkDir: "/home/op/nylon"}, nil
	}
	return l
}

func TestLauncher_RelaunchElevated(t *testing.T) {
	t.Run("子進程退出碼透傳", func(t *testing.T) {
		exec := &fakeExecutor{code: 0}
		l := newTestLauncher(exec)

		code, err := l.RelaunchElevated(context.Background(), SetAccessMarker)
		require.NoError(t, err)
		assert.Equal(t, 0, code)

		require.Len(t, exec.calls, 1)
		assert.Equal(t, []string{
			"pkexec", "env", "NYLON_WORK_DIR=/home/op/nylon", "/opt/nylon/nylon-gui", "--set-access",
		}, exec.calls[0])
	})

	t.Run("非零退出碼", func(t *testing.T) {
		l := newTestLauncher(&fakeExecutor{code: 0x521})
		code, err := l.RelaunchElevated(context.Background(), SetAccessMarker)
		require.NoError(t, err)
		assert.Equal(t, 0x521, code)
	})

	for _, c := range []int{126, 127} {
		t.Run("拒絕授權", func(t *testing.T) {
			l := newTestLauncher(&fakeExecutor{code: c})
			_, err := l.RelaunchElevated(context.Background(), SetAccessMarker)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrElevationDenied))
		})
	}

	t.Run("無法啟動", func(t *testing.T) {
		l := newTestLauncher(&fakeExecutor{code: -1, err: stderrors.New("exec: not found")})
		_, err := l.RelaunchElevated(context.Background(), SetAccessMarker)
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, errors.ErrElevationFailed))
	})

	t.Run("請求構建失敗", func(t *testing.T) {
		exec := &fakeExecutor{}
		l := NewLauncher(exec, zap.NewNop())
		l.newRequest = func(string) (Request, error) { return Request{}, stderrors.New("no exe") }

		_, err := l.RelaunchElevated(context.Background(), SetAccessMarker)
		assert.True(t, stderrors.Is(err, errors.ErrElevationFailed))
		assert.Empty(t, exec.calls)
	})
}

func TestLauncher_AtMostOnce(t *testing.T) {
	exec := &fakeExecutor{code: 0}
	l := newTestLauncher(exec)

	_, err := l.RelaunchElevated(context.Background(), SetAccessMarker)
	require.NoError(t, err)

	_, err = l.RelaunchElevated(context.Background(), SetAccessMarker)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrElevationFailed))
	assert.Len(t, exec.calls, 1)
}

func TestNewRequest(t *testing.T) {
	req, err := NewRequest(SetAccessMarker)
	require.NoError(t, err)
	assert.NotEmpty(t, req.Executable)
	assert.NotEmpty(t, req.WorkDir)
	assert.Equal(t, SetAccessMarker, req.Marker)
}
