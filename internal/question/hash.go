package question

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// ContentHash fingerprints a prompt. Case and whitespace differences do not change it.
func ContentHash(prompt string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(prompt)), " ")
	sum := blake2b.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:8])
}
