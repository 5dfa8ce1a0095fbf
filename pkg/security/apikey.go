package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrHashingFailed = errors.New("api key hashing failed")
	MinKeyLen        = 12
)

// KeyHasher provides the interface for hardware API key operations.
// Keys are provisioned per hardware record and stored hashed.
type KeyHasher interface {
	Hash(key string) (string, error)
	Compare(hashedKey, key string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a new API key hasher using bcrypt
func NewBcryptHasher(cost int) KeyHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (b *bcryptHasher) Hash(key string) (string, error) {
	if len(key) < MinKeyLen {
		return "", errors.New("api key too short")
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(key), b.cost)
	if err != nil {
		return "", ErrHashingFailed
	}
	return string(bytes), nil
}

func (b *bcryptHasher) Compare(hashedKey, key string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedKey), []byte(key))
}
