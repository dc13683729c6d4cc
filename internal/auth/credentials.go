package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/inhome/registry/internal/model"
)

const saltLength = 16

// UserStore is the credential persistence the service needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, salt string, passwordHash []byte) (bool, error)
	GetUser(ctx context.Context, username string) (model.User, bool, error)
}

// Credentials manages salted-hash password storage and verification.
type Credentials struct {
	users UserStore
}

// NewCredentials creates a credential service over the given store.
func NewCredentials(users UserStore) *Credentials {
	return &Credentials{users: users}
}

// Register creates an account with a fresh random salt. Returns false
// without error when the username is already taken.
func (c *Credentials) Register(ctx context.Context, username, password string) (bool, error) {
	salt, err := randomSalt()
	if err != nil {
		return false, fmt.Errorf("generate salt: %w", err)
	}
	hash := digest(password, salt)
	return c.users.CreateUser(ctx, username, salt, hash)
}

// Verify checks a password against the stored digest. Unknown usernames
// and wrong passwords both return false; callers cannot tell them apart.
func (c *Credentials) Verify(ctx context.Context, username, password string) (bool, error) {
	user, found, err := c.users.GetUser(ctx, username)
	if err != nil {
		return false, err
	}
	if !found {
		// Burn a digest anyway so the miss is not distinguishable by timing.
		_ = digest(password, "")
		return false, nil
	}
	computed := digest(password, user.Salt)
	return subtle.ConstantTimeCompare(computed, user.PasswordHash) == 1, nil
}

// digest computes SHA3-512(password + salt).
func digest(password, salt string) []byte {
	sum := sha3.Sum512([]byte(password + salt))
	return sum[:]
}

const saltAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomSalt returns a fresh random alphanumeric salt.
func randomSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = saltAlphabet[int(b)%len(saltAlphabet)]
	}
	return string(buf), nil
}
