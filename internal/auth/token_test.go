package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/raaf17/assesment-test-imp/internal/apperr"
)

func TestIssueAndValidate(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("test-secret"), time.Hour)

	token, err := codec.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID)
	require.NotEmpty(t, claims.ID)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestValidate_Malformed(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("test-secret"), time.Hour)

	for _, tokenStr := range []string{"", "not.a.jwt", "garbage"} {
		_, err := codec.Validate(tokenStr)
		require.Error(t, err)
		require.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := NewCodec([]byte("right-secret"), time.Hour).Issue("u1")
	require.NoError(t, err)

	_, err = NewCodec([]byte("wrong-secret"), time.Hour).Validate(token)
	require.Error(t, err)
	require.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestValidate_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")

	// Issued with a past expiry; a fresh token from the same secret
	// still validates.
	expired, err := NewCodec(secret, -time.Hour).Issue("u1")
	require.NoError(t, err)

	_, err = NewCodec(secret, time.Hour).Validate(expired)
	require.Error(t, err)
	require.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("test-secret"), time.Hour)
	first, err := codec.Issue("user-42")
	require.NoError(t, err)

	firstClaims, err := codec.Validate(first)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond) // exp has second precision

	second, err := codec.Refresh(first)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	secondClaims, err := codec.Validate(second)
	require.NoError(t, err)
	require.Equal(t, firstClaims.UserID, secondClaims.UserID)
	require.NotEqual(t, firstClaims.ID, secondClaims.ID)
	require.True(t, secondClaims.ExpiresAt.After(firstClaims.ExpiresAt.Time))
}

func TestRefresh_ExpiredFails(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	token, err := NewCodec(secret, -time.Hour).Issue("u1")
	require.NoError(t, err)

	_, err = NewCodec(secret, time.Hour).Refresh(token)
	require.Error(t, err)
	require.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}
