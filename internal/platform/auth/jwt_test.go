package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	want := Principal{UserID: uuid.New(), Role: RoleAdmin}

	token, err := m.Generate(want)
	require.NoError(t, err)

	got, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, got.IsAdmin())
}

func TestJWTManager_Verify_Rejects(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	p := Principal{UserID: uuid.New(), Role: RoleMember}

	expired, err := NewJWTManager("secret", -time.Minute).Generate(p)
	require.NoError(t, err)
	foreign, err := NewJWTManager("other-secret", time.Minute).Generate(p)
	require.NoError(t, err)
	badRole, err := m.Generate(Principal{UserID: uuid.New(), Role: "runner"})
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":  expired,
		"foreign":  foreign,
		"bad role": badRole,
		"garbage":  "not-a-jwt",
		"empty":    "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
