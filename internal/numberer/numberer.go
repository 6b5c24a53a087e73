package numberer

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const suffixLength = 5

// NextRange formats the sequential pass numbers for an allocation of
// quantity seats starting after currentSold. Numbers are 1-based and
// contiguous as long as the ledger's sold count is the sole source of the
// starting number.
func NextRange(currentSold, quantity int) string {
	first := currentSold + 1
	if quantity == 1 {
		return fmt.Sprintf("%d", first)
	}
	return fmt.Sprintf("%d - %d", first, currentSold+quantity)
}

// MintID produces a globally unique ticket identifier of the shape
// <EVENT-CODE>-<zero-padded sequence>-<random suffix>. The sequence is the
// cumulative sold count after the allocation, padded to three digits and
// growing naturally past 999. The suffix makes the identifier resistant to
// casual enumeration; it is not a cryptographic guarantee, but five symbols
// from a 36-character alphabet keep the collision probability negligible at
// the volumes a single event sells.
func MintID(eventCode string, sequence int) string {
	return fmt.Sprintf("%s-%03d-%s", eventCode, sequence, randomSuffix())
}

func randomSuffix() string {
	buf := make([]byte, suffixLength)
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the process is in far worse
			// trouble than ticket ids; fall back deterministically.
			buf[i] = suffixAlphabet[i%len(suffixAlphabet)]
			continue
		}
		buf[i] = suffixAlphabet[n.Int64()]
	}
	return string(buf)
}
