package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"strings"
	"time"

	"docvault-be/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/hkdf"
)

// keyRefPrefix versions the key derivation scheme. A future KMS-backed
// scheme gets its own prefix so old ciphertext stays decryptable.
const keyRefPrefix = "local-v1:"

const nonceSize = 12

// Vault encrypts and decrypts tenant data. Every operation takes an opaque
// key reference; a ciphertext sealed under one reference can never be opened
// under another.
type Vault interface {
	KeyRefFor(tenantId uuid.UUID) string
	Encrypt(keyRef string, plaintext []byte) ([]byte, error)
	Decrypt(keyRef string, ciphertext []byte) ([]byte, error)
}

type aesGcmVault struct {
	masterKey []byte
	deks      *cache.Cache
}

func NewAesGcmVault(masterKey string) (Vault, error) {
	if len(masterKey) < 32 {
		return nil, errors.New("crypto master key must be at least 32 bytes")
	}
	return &aesGcmVault{
		masterKey: []byte(masterKey),
		deks:      cache.New(30*time.Minute, 10*time.Minute),
	}, nil
}

func (v *aesGcmVault) KeyRefFor(tenantId uuid.UUID) string {
	return keyRefPrefix + tenantId.String()
}

// dekFor derives the tenant data key from the master key. The key reference
// itself is the derivation context, so distinct references always yield
// distinct keys.
func (v *aesGcmVault) dekFor(keyRef string) ([]byte, error) {
	if !strings.HasPrefix(keyRef, keyRefPrefix) {
		return nil, apperrors.New(apperrors.KindCrypto, "unknown encryption key reference scheme")
	}

	if cached, found := v.deks.Get(keyRef); found {
		return cached.([]byte), nil
	}

	reader := hkdf.New(sha256.New, v.masterKey, nil, []byte("docvault:dek:"+keyRef))
	dek := make([]byte, 32)
	if _, err := io.ReadFull(reader, dek); err != nil {
		return nil, apperrors.Wrap(apperrors.KindCrypto, "failed to derive data key", err)
	}

	v.deks.Set(keyRef, dek, cache.DefaultExpiration)
	return dek, nil
}

func (v *aesGcmVault) aead(keyRef string) (cipher.AEAD, error) {
	dek, err := v.dekFor(keyRef)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(dek)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindCrypto, "failed to init cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindCrypto, "failed to init gcm", err)
	}
	return gcm, nil
}

// Encrypt seals plaintext under the tenant key. Output layout is a random
// 12-byte nonce followed by the ciphertext. The key reference is bound as
// additional authenticated data.
func (v *aesGcmVault) Encrypt(keyRef string, plaintext []byte) ([]byte, error) {
	gcm, err := v.aead(keyRef)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, apperrors.Wrap(apperrors.KindCrypto, "failed to generate nonce", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, []byte(keyRef)), nil
}

// Decrypt fails closed: a wrong key reference, a truncated payload or any
// tampering yields an error, never garbage plaintext.
func (v *aesGcmVault) Decrypt(keyRef string, ciphertext []byte) ([]byte, error) {
	gcm, err := v.aead(keyRef)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < nonceSize {
		return nil, apperrors.New(apperrors.KindCrypto, "ciphertext too short")
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, sealed, []byte(keyRef))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindCrypto, "ciphertext authentication failed", err)
	}

	return plaintext, nil
}
