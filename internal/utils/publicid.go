package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// publicIDAlphabet is the 36-symbol alphabet badges are generated from.
// Uppercase-only keeps the IDs unambiguous when read aloud at the door.
const publicIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// publicIDPrefix marks generated IDs apart from externally supplied
// ones on printed badge sheets.
const publicIDPrefix = "A-"

const publicIDRandLen = 9

// NewPublicID generates a scannable attendee identifier of the form
// "A-" followed by nine random characters from the uppercase
// alphanumeric alphabet. Randomness comes from crypto/rand so imported
// rosters cannot be enumerated from one observed badge.
func NewPublicID() (string, error) {
	var b strings.Builder
	b.WriteString(publicIDPrefix)
	max := big.NewInt(int64(len(publicIDAlphabet)))
	for i := 0; i < publicIDRandLen; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate public id: %w", err)
		}
		b.WriteByte(publicIDAlphabet[n.Int64()])
	}
	return b.String(), nil
}
