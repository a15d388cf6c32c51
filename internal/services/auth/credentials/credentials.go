// Package credentials holds the fixed credential list the auth service
// verifies logins against. The store is immutable after construction;
// production deployments are expected to swap in a real identity backend
// behind the same Verify contract.
package credentials

import (
	"crypto/subtle"
	"fmt"

	apperrors "github.com/ebarkhatov/gatehouse/internal/platform/errors"
)

// Credential is a single username/password pair.
type Credential struct {
	Username string
	Password string
}

// ErrUserNotFound indicates the username is not registered.
var ErrUserNotFound = apperrors.New(apperrors.CodeUserNotFound, "user not found")

// ErrWrongPassword indicates the username exists but the password does not match.
var ErrWrongPassword = apperrors.New(apperrors.CodeWrongPassword, "wrong password")

// Store is an immutable username to password lookup.
type Store struct {
	passwords map[string]string
}

// Defaults returns the reference credential list.
func Defaults() []Credential {
	return []Credential{
		{Username: "root", Password: "admin"},
		{Username: "user", Password: "user"},
	}
}

// NewStore builds a store from the given credentials.
// Usernames must be unique.
func NewStore(creds []Credential) (*Store, error) {
	passwords := make(map[string]string, len(creds))
	for _, cred := range creds {
		if cred.Username == "" {
			return nil, fmt.Errorf("credential username is empty")
		}
		if _, exists := passwords[cred.Username]; exists {
			return nil, fmt.Errorf("duplicate credential username %q", cred.Username)
		}
		passwords[cred.Username] = cred.Password
	}
	return &Store{passwords: passwords}, nil
}

// Verify checks a username/password pair. It returns ErrUserNotFound for an
// unregistered username and ErrWrongPassword for a registered username with
// a non-matching password, so callers can surface distinct reasons.
//
// The comparison is constant-time; the plaintext storage policy itself is
// inherited from the reference credential source.
func (s *Store) Verify(username, password string) error {
	expected, ok := s.passwords[username]
	if !ok {
		return ErrUserNotFound
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(password)) != 1 {
		return ErrWrongPassword
	}
	return nil
}
