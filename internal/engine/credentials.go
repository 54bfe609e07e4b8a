package engine

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// CredentialStore resolves the password of a remote address book account.
type CredentialStore interface {
	Password(user string) (string, error)
}

// KeyringCredentials reads passwords from the OS keyring under Service.
type KeyringCredentials struct {
	Service string
}

// Password returns the stored secret for user. A missing entry yields an
// empty password so servers that allow anonymous reads still work.
func (k KeyringCredentials) Password(user string) (string, error) {
	if user == "" {
		return "", nil
	}
	p, err := keyring.Get(k.Service, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return p, err
}
