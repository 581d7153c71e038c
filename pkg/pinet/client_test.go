package pinet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveUserIDStable(t *testing.T) {
	id1 := DeriveUserID("token-abc-123")
	id2 := DeriveUserID("token-abc-123")
	assert.Equal(t, id1, id2, "同一令牌必须派生出同一ID")
	assert.True(t, strings.HasPrefix(id1, UserIDPrefix))
	assert.Len(t, id1, len(UserIDPrefix)+10)

	other := DeriveUserID("token-abc-124")
	assert.NotEqual(t, id1, other)
}

func TestDeriveUserIDShortToken(t *testing.T) {
	id := DeriveUserID("ab")
	assert.True(t, strings.HasPrefix(id, UserIDPrefix))
	assert.NotEqual(t, UserIDPrefix, id)
}

func TestDeriveUserIDFromUIDStable(t *testing.T) {
	id1 := DeriveUserIDFromUID("platform-uid-1")
	id2 := DeriveUserIDFromUID("platform-uid-1")
	assert.Equal(t, id1, id2)
	assert.True(t, strings.HasPrefix(id1, UserIDPrefix))
	assert.NotEqual(t, id1, DeriveUserIDFromUID("platform-uid-2"))
}

func TestVerifyUser(t *testing.T) {
	client := NewClient("", "pi-gomoku")

	_, err := client.VerifyUser("")
	assert.Error(t, err, "空令牌必须验证失败")

	verified, err := client.VerifyUser("some-real-access-token")
	require.NoError(t, err)
	assert.NotEmpty(t, verified.UID)

	mocked, err := client.VerifyUser("mock-token")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(mocked.UID, "mock_user_"))
}

func TestVerifyPayment(t *testing.T) {
	client := NewClient("", "pi-gomoku")

	_, err := client.VerifyPayment("")
	assert.Error(t, err)

	verified, err := client.VerifyPayment("payment-1")
	require.NoError(t, err)
	assert.Equal(t, "payment-1", verified.PaymentID)
	assert.Equal(t, "completed", verified.Status)
}
