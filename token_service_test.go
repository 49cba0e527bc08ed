package accounts_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	accounts "github.com/goliatone/go-accounts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() accounts.TokenService {
	return accounts.NewTokenService(
		[]byte("test-signing-key"),
		24,
		"test-issuer",
		jwt.ClaimStrings{"test-audience"},
		testLogger{},
	)
}

func TestTokenServiceGenerateAndValidate(t *testing.T) {
	service := newTestTokenService()

	account := &accounts.Account{
		ID:        uuid.New(),
		Email:     "pepe.rone@example.com",
		Confirmed: true,
	}

	signed, err := service.Generate(account)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := service.Validate(signed)
	require.NoError(t, err)

	assert.Equal(t, account.ID.String(), claims.Subject())
	assert.Equal(t, account.ID.String(), claims.AccountID())
	assert.WithinDuration(t, time.Now(), claims.IssuedAt(), 5*time.Second)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.Expires(), 5*time.Second)
}

func TestTokenServiceRejectsTamperedToken(t *testing.T) {
	service := newTestTokenService()

	signed, err := service.Generate(&accounts.Account{ID: uuid.New()})
	require.NoError(t, err)

	_, err = service.Validate(signed + "x")
	require.Error(t, err)
}

func TestTokenServiceRejectsWrongKey(t *testing.T) {
	service := newTestTokenService()

	other := accounts.NewTokenService(
		[]byte("a-different-key"),
		24,
		"test-issuer",
		jwt.ClaimStrings{"test-audience"},
		testLogger{},
	)

	signed, err := other.Generate(&accounts.Account{ID: uuid.New()})
	require.NoError(t, err)

	_, err = service.Validate(signed)
	require.Error(t, err)
}

func TestTokenServiceRejectsExpiredToken(t *testing.T) {
	service := newTestTokenService()

	now := time.Now()
	claims := &accounts.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Subject:   uuid.NewString(),
			Audience:  jwt.ClaimStrings{"test-audience"},
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}

	signed, err := service.SignClaims(claims)
	require.NoError(t, err)

	_, err = service.Validate(signed)
	require.ErrorIs(t, err, accounts.ErrSessionExpired)
}

func TestTokenServiceRejectsWrongIssuer(t *testing.T) {
	service := newTestTokenService()

	other := accounts.NewTokenService(
		[]byte("test-signing-key"),
		24,
		"someone-else",
		jwt.ClaimStrings{"test-audience"},
		testLogger{},
	)

	signed, err := other.Generate(&accounts.Account{ID: uuid.New()})
	require.NoError(t, err)

	_, err = service.Validate(signed)
	require.Error(t, err)
}

func TestTokenServiceGenerateNilAccount(t *testing.T) {
	service := newTestTokenService()

	_, err := service.Generate(nil)
	require.Error(t, err)
}
