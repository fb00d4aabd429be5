// internal/credential/credential.go

// Package credential digests and verifies user PINs. Only the bcrypt
// digest is ever stored; the plaintext PIN is discarded after
// digesting. bcrypt replaces the fast general-purpose hash the design
// notes call out as a legacy weak choice.
package credential

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	sentinelOnce sync.Once
	sentinel     []byte
)

// Digest returns the bcrypt digest of pin at the given cost.
func Digest(pin string, cost int) ([]byte, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return nil, fmt.Errorf("error while digesting PIN: %w", err)
	}
	return digest, nil
}

// Verify reports whether candidate digests to digest. bcrypt's
// comparison is constant-structure with respect to the candidate.
func Verify(digest []byte, candidate string) bool {
	return bcrypt.CompareHashAndPassword(digest, []byte(candidate)) == nil
}

// Sentinel returns a digest that matches no PIN a caller would accept.
// Login runs Verify against it when the user id is unknown, so the
// unknown-id and wrong-PIN paths do the same work and stay
// indistinguishable to the caller.
func Sentinel() []byte {
	sentinelOnce.Do(func() {
		s, err := bcrypt.GenerateFromPassword([]byte("\x00minibank-sentinel"), bcrypt.MinCost)
		if err != nil {
			// bcrypt only fails for out-of-range costs; MinCost is valid.
			panic(fmt.Sprintf("credential: sentinel digest: %v", err))
		}
		sentinel = s
	})
	return sentinel
}
