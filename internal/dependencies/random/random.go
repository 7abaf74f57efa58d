package random

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// Random supplies the randomness used for draws and identifiers so tests can script it
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// NewID returns a fresh unique identifier
	NewID() string
}

// CryptoRandom implements Random using crypto/rand and random UUIDs
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a uniformly distributed int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	result, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(result.Int64())
}

// NewID returns a version 4 UUID
func (r *CryptoRandom) NewID() string {
	return uuid.NewString()
}
