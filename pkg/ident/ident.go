// Package ident generates the opaque string identifiers used for users,
// folders, files and shares, plus share capability tokens.
package ident

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewID returns a practically unique identifier composed of the current
// unix-nano timestamp in hex followed by 8 bytes of secure randomness.
func NewID() string {
	return fmt.Sprintf("%x%s", time.Now().UnixNano(), randomHex(8))
}

// NewToken returns an unguessable 32-character hex secret, independent of
// any id, used as the second factor of a share link.
func NewToken() string {
	return randomHex(16)
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; an error here
		// means the process has no usable entropy source at all.
		panic(fmt.Sprintf("ident: reading random bytes: %v", err))
	}
	return hex.EncodeToString(buf)
}
