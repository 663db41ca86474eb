package order

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const numberPrefix = "ORD-"

var numberSpace = big.NewInt(1 << 32)

// GenerateOrderNumber returns a human-readable order number with 32 bits
// of cryptographic randomness, e.g. ORD-3F9A2B7C. Random generation needs
// no serialization point across concurrent order creation; duplicates are
// caught by the unique constraint and retried by the repository.
func GenerateOrderNumber() string {
	n, err := rand.Int(rand.Reader, numberSpace)
	if err != nil {
		// fallback: time-based entropy
		n = big.NewInt(time.Now().UnixNano() & 0xFFFFFFFF)
	}

	return fmt.Sprintf("%s%08X", numberPrefix, n.Int64())
}
