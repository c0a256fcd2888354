package random

import (
	crypto_rand "crypto/rand"
	"math/big"
	"math/rand"
)

func NewSeed() int64 {
	const MaxUint = ^uint(0)
	const MaxInt = int(MaxUint >> 1)
	nBig, err := crypto_rand.Int(crypto_rand.Reader, big.NewInt(int64(MaxInt)))
	if err != nil {
		panic("cannot seed math/rand package with cryptographically secure random number generator")
	}

	return nBig.Int64()
}

// NewSource returns a math/rand source seeded from crypto/rand.
func NewSource() rand.Source {
	return rand.NewSource(NewSeed())
}
