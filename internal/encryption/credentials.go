package encryption

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"filippo.io/age/armor"

	"pulse-go/internal/pulse"
)

// SealCredential encrypts a plaintext access token and returns it ASCII-armored
// so it can live in a TEXT column.
func SealCredential(enc pulse.Encryptor, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("credential must not be empty")
	}

	var buf bytes.Buffer
	aw := armor.NewWriter(&buf)
	if err := enc.Encrypt(strings.NewReader(token), aw); err != nil {
		return "", fmt.Errorf("sealing credential: %w", err)
	}
	if err := aw.Close(); err != nil {
		return "", fmt.Errorf("armoring credential: %w", err)
	}
	return buf.String(), nil
}

// IsSealed reports whether stored looks like an armored credential.
func IsSealed(stored string) bool {
	return strings.HasPrefix(strings.TrimSpace(stored), armor.Header)
}

// SealedCredentials opens armored credentials with an unlocked key.
type SealedCredentials struct {
	dc pulse.DecryptionContext
}

var _ pulse.CredentialSource = (*SealedCredentials)(nil)

func NewSealedCredentials(dc pulse.DecryptionContext) *SealedCredentials {
	return &SealedCredentials{dc: dc}
}

// Reveal decrypts stored. Credentials stored before encryption was enabled
// are not armored and are returned unchanged.
func (c *SealedCredentials) Reveal(stored string) (string, error) {
	if !IsSealed(stored) {
		return stored, nil
	}

	var out bytes.Buffer
	ar := armor.NewReader(strings.NewReader(strings.TrimSpace(stored)))
	if err := c.dc.Decrypt(ar, &out); err != nil {
		return "", fmt.Errorf("opening credential: %w", err)
	}
	// Drain any trailing armor so footer errors surface.
	if _, err := io.Copy(io.Discard, ar); err != nil {
		return "", fmt.Errorf("reading armored credential: %w", err)
	}
	return out.String(), nil
}
