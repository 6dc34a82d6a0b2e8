package random

import (
	"crypto/rand"
	"math/big"
)

// IDAlphabet is the character set used for generated identifiers
const IDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// idLength is the length of the random part of a generated identifier
const idLength = 12

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string

	// ID generates an identifier of the form "<prefix>-<random>"
	ID(prefix string) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a cryptographically random int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	result, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand does not fail on supported platforms
		return 0
	}
	return int(result.Int64())
}

// String generates a random string of the given length from the given alphabet
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(result)
}

// ID generates an identifier of the form "<prefix>-<random>"
func (r *CryptoRandom) ID(prefix string) string {
	return prefix + "-" + r.String(idLength, IDAlphabet)
}
