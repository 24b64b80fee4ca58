package testutil

import (
	"testing"

	"pulse-go/internal/encryption"
)

// SealedCredential seals token with the test encryptor, as stored by `account add`.
func SealedCredential(t *testing.T, token string) string {
	t.Helper()
	sealed, err := encryption.SealCredential(encryption.NewTestEncryptor(), token)
	if err != nil {
		t.Fatalf("SealCredential() error = %v", err)
	}
	return sealed
}
