package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Keystore encrypts and decrypts per-integration secrets by delegating to the
// database-side encrypt_api_key / decrypt_api_key functions. Handlers only
// ever hold ciphertext at rest; plaintext lives in request scope only.
type Keystore struct {
	db *gorm.DB
}

// NewKeystore creates a keystore over the given connection
func NewKeystore(db *gorm.DB) *Keystore {
	return &Keystore{db: db}
}

// Encrypt encrypts a plaintext secret
func (k *Keystore) Encrypt(ctx context.Context, plaintext string) (string, error) {
	var ciphertext string
	err := k.db.WithContext(ctx).
		Raw("SELECT encrypt_api_key(?)", plaintext).
		Scan(&ciphertext).Error
	if err != nil {
		return "", fmt.Errorf("encrypt_api_key: %w", err)
	}
	return ciphertext, nil
}

// Decrypt decrypts a stored ciphertext
func (k *Keystore) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	var plaintext string
	err := k.db.WithContext(ctx).
		Raw("SELECT decrypt_api_key(?)", ciphertext).
		Scan(&plaintext).Error
	if err != nil {
		return "", fmt.Errorf("decrypt_api_key: %w", err)
	}
	return plaintext, nil
}
