package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/awemart/awemart/internal/application/auth"
	"github.com/awemart/awemart/internal/domain/customer"
	"github.com/awemart/awemart/internal/infrastructure/id"
	"github.com/awemart/awemart/internal/infrastructure/storage/storagetest"
)

func TestSignupAndLogin(t *testing.T) {
	db := storagetest.Open(t)
	svc := appauth.NewService(db, id.NewUUIDGenerator())
	ctx := context.Background()

	cust, err := svc.Signup(ctx, "mia", "secret")
	require.NoError(t, err)
	assert.Equal(t, customer.RoleCustomer, cust.Role)
	assert.True(t, cust.Wallet.IsZero())
	assert.NotEqual(t, "secret", cust.PasswordHash, "password is stored hashed")

	_, err = svc.Signup(ctx, "mia", "other")
	assert.ErrorIs(t, err, customer.ErrUsernameTaken)

	_, err = svc.Signup(ctx, "", "secret")
	assert.ErrorIs(t, err, appauth.ErrInvalidCredentials)

	got, err := svc.Login(ctx, "mia", "secret")
	require.NoError(t, err)
	assert.Equal(t, cust.ID, got.ID)

	_, err = svc.Login(ctx, "mia", "wrong")
	assert.ErrorIs(t, err, appauth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "secret")
	assert.ErrorIs(t, err, appauth.ErrInvalidCredentials)
}

func TestPrincipal(t *testing.T) {
	db := storagetest.Open(t)
	svc := appauth.NewService(db, id.NewUUIDGenerator())
	ctx := context.Background()

	cust, err := svc.Signup(ctx, "mia", "secret")
	require.NoError(t, err)

	got, err := svc.Principal(ctx, cust.ID)
	require.NoError(t, err)
	assert.Equal(t, "mia", got.Username)

	_, err = svc.Principal(ctx, "nope")
	assert.ErrorIs(t, err, customer.ErrNotFound)
}
