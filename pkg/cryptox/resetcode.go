package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// ResetCodeDigits is the length of a password-reset code.
const ResetCodeDigits = 6

// GenerateResetCode returns a random numeric code of ResetCodeDigits digits,
// zero-padded. Only its hash (see HashSecret) is ever persisted.
func GenerateResetCode() (string, error) {
	max := big.NewInt(1)
	for range ResetCodeDigits {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("cryptox: generate reset code: %w", err)
	}
	return fmt.Sprintf("%0*d", ResetCodeDigits, n), nil
}
