package app

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"

	"pulse-go/internal/encryption"
	"pulse-go/internal/pulse"
)

// PassphraseEnv, when set, supplies the key passphrase without prompting.
const PassphraseEnv = "PULSE_PASSPHRASE"

// PassphraseFunc returns the passphrase protecting the credential key.
type PassphraseFunc func() (string, error)

// PromptPassphrase reads the passphrase from PULSE_PASSPHRASE, or from the
// terminal without echo. It fails when stdin is not a terminal.
func PromptPassphrase(prompt string) PassphraseFunc {
	return func() (string, error) {
		if p := os.Getenv(PassphraseEnv); p != "" {
			return p, nil
		}

		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return "", fmt.Errorf("no terminal to read passphrase from; set %s", PassphraseEnv)
		}
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return string(b), nil
	}
}

// credentialUnlocker reveals stored credentials, unlocking the key the first
// time a sealed one is seen. Runs that only touch plaintext credentials
// never ask for the passphrase.
type credentialUnlocker struct {
	encryptor  pulse.Encryptor
	passphrase PassphraseFunc

	once   sync.Once
	sealed *encryption.SealedCredentials
	err    error
}

var _ pulse.CredentialSource = (*credentialUnlocker)(nil)

func (u *credentialUnlocker) Reveal(stored string) (string, error) {
	if !encryption.IsSealed(stored) {
		return stored, nil
	}
	if u.encryptor == nil {
		return "", fmt.Errorf("credential is sealed but encryption is disabled")
	}

	u.once.Do(u.unlock)
	if u.err != nil {
		return "", u.err
	}
	return u.sealed.Reveal(stored)
}

func (u *credentialUnlocker) unlock() {
	if u.passphrase == nil {
		u.err = fmt.Errorf("credential is sealed and no passphrase source is configured")
		return
	}
	pass, err := u.passphrase()
	if err != nil {
		u.err = err
		return
	}
	dc, err := u.encryptor.Unlock(pass)
	if err != nil {
		u.err = fmt.Errorf("unlocking credential key: %w", err)
		return
	}
	u.sealed = encryption.NewSealedCredentials(dc)
}
