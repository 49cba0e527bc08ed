package accounts

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost tuned for interactive logins; raising it is a data migration,
// existing hashes keep their original cost.
const hashCost = 12

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// RandomPasswordHash is a temporary password
func RandomPasswordHash() string {
	pwd := uuid.New()

	h, err := HashPassword(pwd.String())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}

type bcryptCredentials struct{}

// NewCredentialManager returns the default bcrypt backed CredentialManager
func NewCredentialManager() CredentialManager {
	return bcryptCredentials{}
}

func (bcryptCredentials) HashPassword(password string) (string, error) {
	return HashPassword(password)
}

func (bcryptCredentials) ComparePasswordAndHash(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}
