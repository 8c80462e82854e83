package crypto

import (
	"testing"

	"docvault-be/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMasterKey = "0123456789abcdef0123456789abcdef"

func TestVaultRoundTrip(t *testing.T) {
	vault, err := NewAesGcmVault(testMasterKey)
	require.NoError(t, err)

	keyRef := vault.KeyRefFor(uuid.New())

	tests := []struct {
		name      string
		plaintext string
	}{
		{name: "short text", plaintext: "hello"},
		{name: "empty text", plaintext: ""},
		{name: "unicode", plaintext: "résumé 履歴書 📄"},
		{name: "long text", plaintext: string(make([]byte, 64*1024))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := vault.Encrypt(keyRef, []byte(tt.plaintext))
			require.NoError(t, err)
			assert.NotEqual(t, tt.plaintext, string(sealed))

			opened, err := vault.Decrypt(keyRef, sealed)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, string(opened))
		})
	}
}

func TestVaultCrossTenantDecryptFails(t *testing.T) {
	vault, err := NewAesGcmVault(testMasterKey)
	require.NoError(t, err)

	refA := vault.KeyRefFor(uuid.New())
	refB := vault.KeyRefFor(uuid.New())

	sealed, err := vault.Encrypt(refA, []byte("tenant A secret"))
	require.NoError(t, err)

	opened, err := vault.Decrypt(refB, sealed)
	assert.Nil(t, opened)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindCrypto, apperrors.KindOf(err))
}

func TestVaultTamperDetection(t *testing.T) {
	vault, err := NewAesGcmVault(testMasterKey)
	require.NoError(t, err)

	keyRef := vault.KeyRefFor(uuid.New())
	sealed, err := vault.Encrypt(keyRef, []byte("untouched"))
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xff

	_, err = vault.Decrypt(keyRef, sealed)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindCrypto, apperrors.KindOf(err))
}

func TestVaultRejectsMalformedInput(t *testing.T) {
	vault, err := NewAesGcmVault(testMasterKey)
	require.NoError(t, err)

	keyRef := vault.KeyRefFor(uuid.New())

	_, err = vault.Decrypt(keyRef, []byte{0x01, 0x02})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindCrypto, apperrors.KindOf(err))

	_, err = vault.Encrypt("kms-v9:whatever", []byte("data"))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindCrypto, apperrors.KindOf(err))
}

func TestVaultNonceUniqueness(t *testing.T) {
	vault, err := NewAesGcmVault(testMasterKey)
	require.NoError(t, err)

	keyRef := vault.KeyRefFor(uuid.New())

	first, err := vault.Encrypt(keyRef, []byte("same input"))
	require.NoError(t, err)
	second, err := vault.Encrypt(keyRef, []byte("same input"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestNewVaultRejectsWeakMasterKey(t *testing.T) {
	_, err := NewAesGcmVault("short")
	require.Error(t, err)
}
