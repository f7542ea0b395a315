package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingKey = errors.New("missing api key")
	ErrInvalidKey = errors.New("invalid api key")
)

// InvalidKeyError carries the rejected key so the caller can echo it back.
// It never carries the configured secret.
type InvalidKeyError struct {
	Key string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid api key: '%s'", e.Key)
}

func (e *InvalidKeyError) Is(target error) bool {
	return target == ErrInvalidKey
}

// Guard decides whether a presented key matches the configured secret.
type Guard struct {
	digest [sha256.Size]byte
	hash   []byte
}

func NewGuard(key string) *Guard {
	return &Guard{digest: sha256.Sum256([]byte(key))}
}

// NewHashedGuard compares presented keys against a bcrypt hash instead of a
// plaintext secret.
func NewHashedGuard(bcryptHash string) (*Guard, error) {
	if _, err := bcrypt.Cost([]byte(bcryptHash)); err != nil {
		return nil, fmt.Errorf("api key hash: %w", err)
	}
	return &Guard{hash: []byte(bcryptHash)}, nil
}

// Authorize reports nil only when a key was presented and it matches.
func (g *Guard) Authorize(presented string, ok bool) error {
	if !ok {
		return ErrMissingKey
	}
	if !g.matches(presented) {
		return &InvalidKeyError{Key: presented}
	}
	return nil
}

func (g *Guard) matches(key string) bool {
	if g.hash != nil {
		return bcrypt.CompareHashAndPassword(g.hash, []byte(key)) == nil
	}
	d := sha256.Sum256([]byte(key))
	return subtle.ConstantTimeCompare(d[:], g.digest[:]) == 1
}
