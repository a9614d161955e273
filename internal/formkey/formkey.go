// Package formkey issues and checks the anti-forgery token carried by
// storefront forms as the form_key field.
package formkey

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
)

const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// Length is the number of characters in a generated key.
	Length = 16
)

// Generate returns a new random form key.
func Generate() (string, error) {
	out := make([]byte, Length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}

// Valid reports whether submitted matches expected. An empty expected key
// never validates.
func Valid(expected, submitted string) bool {
	if expected == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) == 1
}
