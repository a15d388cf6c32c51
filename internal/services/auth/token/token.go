// Package token generates opaque session tokens and instance identities.
package token

import "github.com/google/uuid"

// Issue returns a new opaque session token: 128 bits of randomness rendered
// as a hyphenated hex string. Tokens carry no structure beyond statistical
// uniqueness. Safe for concurrent use.
func Issue() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// NewInstanceID returns the random identity stamped into sessions as the
// owner tag. Generated once per service instance at construction; a restart
// produces a new identity and orphans every outstanding session.
func NewInstanceID() (string, error) {
	return Issue()
}
