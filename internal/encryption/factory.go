package encryption

import (
	"fmt"

	"pulse-go/internal/config"
	"pulse-go/internal/pulse"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration type.
// Type "none" returns a nil Encryptor: credentials are stored and read as plaintext.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (pulse.Encryptor, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
