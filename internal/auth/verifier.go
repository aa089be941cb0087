package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any credential verification
// failure. Callers must not distinguish between unknown users and
// wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Verifier checks a username/password pair and returns the principal
// and its granted roles.
type Verifier interface {
	Verify(username, password string) (*Principal, error)
}

// User is a configured account: a username, a bcrypt password hash,
// and the granted roles.
type User struct {
	Username     string
	PasswordHash string
	Roles        []string
}

// StaticVerifier verifies credentials against a fixed user list
// declared in configuration.
type StaticVerifier struct {
	users map[string]User
}

// NewStaticVerifier creates a verifier from the given users.
func NewStaticVerifier(users []User) *StaticVerifier {
	m := make(map[string]User, len(users))
	for _, u := range users {
		m[u.Username] = u
	}
	return &StaticVerifier{users: m}
}

// Verify implements Verifier. It compares the password against the
// stored bcrypt hash and returns ErrInvalidCredentials on any failure.
func (v *StaticVerifier) Verify(username, password string) (*Principal, error) {
	u, ok := v.users[username]
	if !ok {
		// Burn a comparison anyway so unknown users take the same
		// time as wrong passwords.
		_ = bcrypt.CompareHashAndPassword(
			[]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B4VZv0n5ZnUQeCaS2sy4uPhW1y5e"),
			[]byte(password),
		)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	roles := make([]string, len(u.Roles))
	copy(roles, u.Roles)

	return &Principal{
		Username: u.Username,
		Roles:    roles,
	}, nil
}

// HashPassword produces a bcrypt hash for the given password at the
// default cost. Used by setup tooling and tests.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
