package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a ULID string. Outbound message ids sort by creation time,
// which lets the SMS gateway deduplicate and order retries.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
