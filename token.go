package accounts

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/goliatone/go-errors"
)

// tokenByteLen sizes the random confirmation token value. 20 bytes keeps the
// collision probability negligible without uniqueness checks at issue time;
// the store still carries a unique constraint as the backstop.
const tokenByteLen = 20

// DefaultConfirmationTokenTTL is the validity window promised in the
// notification copy.
const DefaultConfirmationTokenTTL = "10m"

// GenerateToken produces a confirmation token value from a cryptographically
// strong source. It does not consult the store; a collision surfaces as a
// unique-constraint failure on insert.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenByteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate confirmation token")
	}
	return hex.EncodeToString(buf), nil
}

// TokenWindowElapsed reports whether a token minted at the given time has
// outlived the validity window. The pattern is a time.ParseDuration
// expression, e.g. "10m".
func TokenWindowElapsed(createdAt time.Time, pattern string) (bool, error) {
	window, err := time.ParseDuration(pattern)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "invalid confirmation token window")
	}

	return time.Now().After(createdAt.Add(window)), nil
}

// ensureTokenUsable applies the shared consumption-time checks: presence of a
// creation date and the expiry window.
func ensureTokenUsable(token *ConfirmationToken, pattern string) error {
	if token.CreatedAt == nil {
		return errors.New("confirmation token is missing creation date", errors.CategoryInternal)
	}

	if pattern == "" {
		pattern = DefaultConfirmationTokenTTL
	}

	elapsed, err := TokenWindowElapsed(*token.CreatedAt, pattern)
	if err != nil {
		return err
	}

	if elapsed {
		return ErrTokenExpired
	}

	return nil
}
