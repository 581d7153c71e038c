package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerShutdownWaits(t *testing.T) {
	m := NewManager()
	handle, err := m.NewServiceHandle("worker")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer handle.Close()
		<-handle.Done()
	}()

	m.Shutdown()
	remaining := m.WaitWithTimeout(time.Second)
	assert.Empty(t, remaining)
	<-done
}

func TestManagerReportsStragglers(t *testing.T) {
	m := NewManager()
	_, err := m.NewServiceHandle("stuck")
	require.NoError(t, err)

	m.Shutdown()
	remaining := m.WaitWithTimeout(50 * time.Millisecond)
	assert.Equal(t, []string{"stuck"}, remaining)
}

func TestManagerRejectsDuplicateNames(t *testing.T) {
	m := NewManager()
	_, err := m.NewServiceHandle("worker")
	require.NoError(t, err)
	_, err = m.NewServiceHandle("worker")
	assert.Error(t, err)
}

func TestHandleSleepInterrupted(t *testing.T) {
	m := NewManager()
	handle, err := m.NewServiceHandle("sleeper")
	require.NoError(t, err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		m.Shutdown()
	}()

	start := time.Now()
	err = handle.Sleep(5 * time.Second)
	assert.Error(t, err, "停机信号应中断休眠")
	assert.Less(t, time.Since(start), time.Second)
}
