package random

import (
	"crypto/rand"
	"math/big"
)

// Random is the source of every random choice in the game: key permutations,
// question draws, hint outcomes and identifiers
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// IDAlphabet is used for game identifiers
const IDAlphabet = "abcdefghijkmnpqrstuvwxyz23456789"

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a cryptographically random int in [0, n), or 0 when n <= 0
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

// Shuffle performs a Fisher-Yates shuffle of n elements using rnd
func Shuffle(rnd Random, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		swap(i, j)
	}
}
