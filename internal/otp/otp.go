// Package otp generates, delivers, and validates one-time email codes.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// DefaultLength is the number of decimal digits in a generated code.
const DefaultLength = 6

// Result is the outcome of validating a submitted code.
type Result int

const (
	ResultOK Result = iota
	ResultExpired
	ResultMismatch
)

// Generate returns a cryptographically random decimal code of the given
// length, preserving leading zeros.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("otp generate: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

// Validate compares a submitted code against the active one. Whitespace
// inside the submitted value is stripped before comparison. The code is
// fresh while now-issuedAt does not exceed the TTL.
func Validate(submitted, active string, issuedAt, now time.Time, ttl time.Duration) Result {
	if now.Sub(issuedAt) > ttl {
		return ResultExpired
	}
	code := strings.Join(strings.Fields(submitted), "")
	if code == "" || active == "" || code != active {
		return ResultMismatch
	}
	return ResultOK
}
