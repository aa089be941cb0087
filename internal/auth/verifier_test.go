package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVerifier(t *testing.T) *StaticVerifier {
	t.Helper()
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	return NewStaticVerifier([]User{
		{
			Username:     "admin",
			PasswordHash: hash,
			Roles:        []string{"ADMIN", "USER"},
		},
	})
}

func TestStaticVerifier_Verify(t *testing.T) {
	v := testVerifier(t)

	principal, err := v.Verify("admin", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "admin", principal.Username)
	assert.Equal(t, []string{"ADMIN", "USER"}, principal.Roles)
}

func TestStaticVerifier_WrongPassword(t *testing.T) {
	v := testVerifier(t)

	principal, err := v.Verify("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, principal)
}

func TestStaticVerifier_UnknownUser(t *testing.T) {
	v := testVerifier(t)

	principal, err := v.Verify("nobody", "s3cret")
	// Same error for unknown user and wrong password
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, principal)
}

func TestPrincipal_HasRole(t *testing.T) {
	p := &Principal{Username: "admin", Roles: []string{"ADMIN", "USER"}}

	assert.True(t, p.HasRole("ADMIN"))
	assert.True(t, p.HasRole("USER"))
	assert.False(t, p.HasRole("ROOT"))
}

func TestPrincipalContext(t *testing.T) {
	p := &Principal{Username: "admin"}

	ctx := ContextWithPrincipal(context.Background(), p)
	got, ok := PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, p, got)

	_, ok = PrincipalFromContext(context.Background())
	assert.False(t, ok)
}
