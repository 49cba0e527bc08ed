package accounts

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	// TextCodeEmailRegistered flags registration/profile conflicts on email
	TextCodeEmailRegistered = "account_email_registered"
	// TextCodeAccountNotFound flags lookups for accounts that do not exist
	TextCodeAccountNotFound = "account_not_found"
	// TextCodeTokenNotFound flags missing or already consumed confirmation codes
	TextCodeTokenNotFound = "confirmation_token_not_found"
	// TextCodeTokenExpired flags confirmation codes outside their validity window
	TextCodeTokenExpired = "confirmation_token_expired"
	// TextCodeInvalidCredentials flags password mismatches
	TextCodeInvalidCredentials = "invalid_credentials"
	// TextCodeNotConfirmed flags logins against unconfirmed accounts
	TextCodeNotConfirmed = "account_not_confirmed"
	// TextCodeAlreadyConfirmed flags confirmation-code requests for confirmed accounts
	TextCodeAlreadyConfirmed = "account_already_confirmed"
	// TextCodeSessionExpired flags expired session credentials
	TextCodeSessionExpired = "session_expired"
	// TextCodeSessionMalformed flags undecodable session credentials
	TextCodeSessionMalformed = "session_malformed"
)

// ErrEmailAlreadyRegistered is returned when an email is owned by another account.
var ErrEmailAlreadyRegistered = errors.New("this email is already registered", errors.CategoryConflict).
	WithTextCode(TextCodeEmailRegistered).
	WithCode(errors.CodeConflict)

// ErrAccountNotFound is returned when no account matches the given identifier.
var ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(errors.CodeNotFound)

// ErrTokenNotFound is returned when a confirmation code is missing or was
// already consumed.
var ErrTokenNotFound = errors.New("confirmation code is not valid", errors.CategoryNotFound).
	WithTextCode(TextCodeTokenNotFound).
	WithCode(errors.CodeNotFound)

// ErrTokenExpired is returned when a confirmation code exists but is outside
// its validity window. It keeps the not-found category on purpose so the
// transport maps it like a consumed code.
var ErrTokenExpired = errors.New("confirmation code has expired", errors.CategoryNotFound).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeNotFound)

// ErrInvalidCredentials is returned on password mismatch.
var ErrInvalidCredentials = errors.New("incorrect password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrCurrentPasswordInvalid is returned when the current password check of a
// password change fails.
var ErrCurrentPasswordInvalid = errors.New("current password is incorrect", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrAccountNotConfirmed is returned when an unconfirmed account attempts to
// log in. A fresh confirmation code is issued alongside it.
var ErrAccountNotConfirmed = errors.New("this account has not been confirmed, we sent you a new confirmation code", errors.CategoryAuth).
	WithTextCode(TextCodeNotConfirmed).
	WithCode(errors.CodeUnauthorized)

// ErrAccountAlreadyConfirmed is returned when a confirmation code is
// requested for an account that is already confirmed.
var ErrAccountAlreadyConfirmed = errors.New("this account is already confirmed", errors.CategoryAuth).
	WithTextCode(TextCodeAlreadyConfirmed).
	WithCode(errors.CodeForbidden)

// ErrSessionExpired is returned for expired session credentials.
var ErrSessionExpired = errors.New("session has expired", errors.CategoryAuth).
	WithTextCode(TextCodeSessionExpired).
	WithCode(errors.CodeUnauthorized)

// ErrSessionMalformed is returned for session credentials we cannot decode.
var ErrSessionMalformed = errors.New("invalid session credential", errors.CategoryAuth).
	WithTextCode(TextCodeSessionMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString is the error we return when hashing an empty password
var ErrNoEmptyString = errors.New("password cannot be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the sentinel for a failed password comparison
var ErrMismatchedHashAndPassword = errors.New("mismatched password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToFindSession is the error when a request carries no credential
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToMapClaims is the error when claims cannot be read from a credential
var ErrUnableToMapClaims = errors.New("unable to map claims", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// IsTokenExpiredError will check for expired session credentials
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrSessionExpired) ||
		strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for undecodable session credentials
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsUniqueConstraintError will check for unique index violations across the
// supported dialects (sqlite, postgres).
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}
