package service

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

const otpDigits = 6

var otpModulus = big.NewInt(1_000_000)

// generateOTP devuelve un código numérico de 6 dígitos uniforme sobre [000000, 999999].
func generateOTP(random io.Reader) (string, error) {
	if random == nil {
		random = rand.Reader
	}
	n, err := rand.Int(random, otpModulus)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}
