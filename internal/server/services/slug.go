package services

import (
	"crypto/rand"
	"math/big"

	"github.com/dmitrijs2005/factshare/internal/share"
)

var alphabetSize = big.NewInt(int64(len(share.SlugAlphabet)))

// randomSlug draws n characters uniformly from share.SlugAlphabet.
func randomSlug(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		b[i] = share.SlugAlphabet[idx.Int64()]
	}
	return string(b), nil
}
