package digest

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Func maps arbitrary input to a fixed-length hex string.
type Func func(data []byte) string

// Supported digest names.
const (
	SHA1    = "sha1"
	BLAKE2b = "blake2b"
)

// SHA1Hex is the default record-key digest.
func SHA1Hex(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// BLAKE2bHex returns the hex form of a 256-bit BLAKE2b digest.
func BLAKE2bHex(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ByName resolves a configured digest name. An empty name selects SHA1.
func ByName(name string) (Func, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SHA1:
		return SHA1Hex, nil
	case BLAKE2b:
		return BLAKE2bHex, nil
	default:
		return nil, fmt.Errorf("unknown digest %q", name)
	}
}
