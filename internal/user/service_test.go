package user

import (
	"strings"
	"testing"

	"github.com/PiGomoku/pi-gomoku-backend/pkg/pinet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLoginTest(t *testing.T) {
	t.Helper()
	InitializeRepository(100)
	InitializeService(pinet.NewClient("", "pi-gomoku-test"))
}

func TestLoginDerivesStableID(t *testing.T) {
	setupLoginTest(t)

	result, err := Login("some-real-access-token", "Alice")
	require.NoError(t, err)
	assert.True(t, result.IsNew)
	assert.True(t, strings.HasPrefix(result.Profile.ID, pinet.UserIDPrefix))

	// 同一令牌再次登录回到同一账户
	again, err := Login("some-real-access-token", "Alice")
	require.NoError(t, err)
	assert.False(t, again.IsNew)
	assert.Equal(t, result.Profile.ID, again.Profile.ID)
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	setupLoginTest(t)

	_, err := Login("", "Alice")
	assert.Error(t, err)
	assert.Equal(t, 0, UserCount())
}

func TestLoginMockTokenStaysOutOfRealNamespace(t *testing.T) {
	setupLoginTest(t)

	// 模拟令牌登录成功，但ID必须留在mock_命名空间，不混入真实用户前缀
	result, err := Login("mock-session-token", "Tester")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Profile.ID, "mock_"))
	assert.False(t, strings.HasPrefix(result.Profile.ID, pinet.UserIDPrefix))
}

func TestLoginGeneratesPlaceholderUsername(t *testing.T) {
	setupLoginTest(t)

	result, err := Login("some-real-access-token", "")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Profile.Username)
}
