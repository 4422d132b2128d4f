package weapi

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Source supplies the randomness for session keys and cookie nonces.
// *math/rand.Rand satisfies it, which lets tests pin the output.
type Source interface {
	Intn(n int) int
}

type cryptoSource struct{}

// NewSource returns a [Source] backed by crypto/rand.
func NewSource() Source {
	return cryptoSource{}
}

func (cryptoSource) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("weapi: crypto/rand unavailable: " + err.Error())
	}
	return int(v.Int64())
}

// SecretKey draws n characters from [Alphabet].
func SecretKey(src Source, n int) string {
	if src == nil {
		src = NewSource()
	}
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(Alphabet[src.Intn(len(Alphabet))])
	}
	return b.String()
}
