package ticketcode

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
)

// Alphabet excludes visually ambiguous characters (0/O, 1/I/L).
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Length of a public ticket code.
const Length = 7

// maxAttempts bounds the collision-retry loop. After the budget is spent the
// last candidate is returned as-is; the store's unique constraint catches the
// residual collision.
const maxAttempts = 10

// ExistsFunc probes whether a candidate code is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Generate produces a unique 7-character ticket code, retrying a bounded
// number of times against the uniqueness probe.
func Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	var code string
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate, err := random()
		if err != nil {
			return "", err
		}
		code = candidate

		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return code, nil
}

// Normalize upper-cases a code for lookup. Generation is always uppercase.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func random() (string, error) {
	var b strings.Builder
	b.Grow(Length)
	max := big.NewInt(int64(len(Alphabet)))
	for i := 0; i < Length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(Alphabet[n.Int64()])
	}
	return b.String(), nil
}
