package util

import (
	"crypto/rand"
	"math/big"
)

const accessKeyCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateAccessKey builds a name like PREFIX-7K3QZ9XA from an unambiguous charset.
func GenerateAccessKey(prefix string, length int) (string, error) {
	b := make([]byte, length)
	max := big.NewInt(int64(len(accessKeyCharset)))
	for i := range b {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = accessKeyCharset[num.Int64()]
	}
	if prefix == "" {
		return string(b), nil
	}
	return prefix + "-" + string(b), nil
}
