package service

import (
	"context"
	"testing"

	"docvault-be/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveProvisionsTenantOnFirstSight(t *testing.T) {
	vault := testVault(t)
	uow := newFakeUow()
	svc := NewUserService(&fakeUowFactory{uow: uow}, vault, nopLogger{})

	user, err := svc.Resolve(context.Background(), "auth0|abc123", "person@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, user.Id, user.TenantId)
	require.Len(t, uow.users.users, 1)

	// The email is sealed under the new tenant's own key.
	email, err := vault.Decrypt(vault.KeyRefFor(user.TenantId), user.EmailEncrypted)
	require.NoError(t, err)
	assert.Equal(t, "person@example.com", string(email))
}

func TestResolveReturnsExistingUser(t *testing.T) {
	vault := testVault(t)
	uow := newFakeUow()
	svc := NewUserService(&fakeUowFactory{uow: uow}, vault, nopLogger{})

	first, err := svc.Resolve(context.Background(), "auth0|abc123", "person@example.com")
	require.NoError(t, err)

	second, err := svc.Resolve(context.Background(), "auth0|abc123", "person@example.com")
	require.NoError(t, err)

	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, first.TenantId, second.TenantId)
	assert.Len(t, uow.users.users, 1)
}

func TestResolveRequiresSubject(t *testing.T) {
	vault := testVault(t)
	svc := NewUserService(&fakeUowFactory{uow: newFakeUow()}, vault, nopLogger{})

	_, err := svc.Resolve(context.Background(), "", "person@example.com")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
