package testutil

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/ethereum/go-ethereum/common"
)

// RandomAlphaNum generates random alphanumeric string
// in case length <= 0 it returns empty string
func RandomAlphaNum(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	if length <= 0 {
		return "", fmt.Errorf("length must be greater than 0")
	}

	randomString := make([]byte, length)
	for i := range randomString {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		randomString[i] = charset[num.Int64()]
	}

	return string(randomString), nil
}

// RandomAddress returns a random 20-byte account address.
func RandomAddress() common.Address {
	var addr common.Address
	for i := range addr {
		addr[i] = gofakeit.Uint8()
	}
	return addr
}

// RandomHash returns a random transaction hash.
func RandomHash() common.Hash {
	var h common.Hash
	for i := range h {
		h[i] = gofakeit.Uint8()
	}
	return h
}

// RandomWei returns a random amount between 1 and maxWhole whole tokens, with a random
// fractional part so sums exercise full 18-decimal precision.
func RandomWei(maxWhole int) *big.Int {
	whole := new(big.Int).Mul(
		big.NewInt(int64(gofakeit.IntRange(1, maxWhole))),
		new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
	)
	return whole.Add(whole, big.NewInt(gofakeit.Int64()&0x7fffffffffff))
}

// Wei converts whole tokens into wei.
func Wei(whole int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}
