package pulse

import "io"

// CredentialSource turns the stored form of an access credential into the
// token sent upstream. The engine only reads credentials; it never writes them.
type CredentialSource interface {
	Reveal(stored string) (string, error)
}

// PlaintextCredentials treats stored credentials as already usable tokens.
type PlaintextCredentials struct{}

func (PlaintextCredentials) Reveal(stored string) (string, error) { return stored, nil }

// Encryptor seals data with a public key. Sealing needs no passphrase.
type Encryptor interface {
	// Setup generates a key pair, storing the private key protected by passphrase.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock opens the private key and returns a context able to decrypt.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether both key files exist.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key for the life of a process.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
