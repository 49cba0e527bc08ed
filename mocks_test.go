package accounts_test

import (
	"context"
	"database/sql"

	accounts "github.com/goliatone/go-accounts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockRepositoryManager implements accounts.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

// RunInTx executes the callback with a zero value transaction so command
// handlers can be exercised without a database. Repository calls inside the
// callback hit the sibling mocks.
func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	m.Called(ctx, opts, f)
	var tx bun.Tx
	return f(ctx, tx)
}

func (m *MockRepositoryManager) Accounts() accounts.Accounts {
	args := m.Called()
	return args.Get(0).(accounts.Accounts)
}

func (m *MockRepositoryManager) Tokens() accounts.ConfirmationTokens {
	args := m.Called()
	return args.Get(0).(accounts.ConfirmationTokens)
}

// MockAccounts implements accounts.Accounts
type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) GetByID(ctx context.Context, id string) (*accounts.Account, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*accounts.Account)
	return record, args.Error(1)
}

func (m *MockAccounts) GetByIDTx(ctx context.Context, tx bun.IDB, id string) (*accounts.Account, error) {
	args := m.Called(ctx, tx, id)
	record, _ := args.Get(0).(*accounts.Account)
	return record, args.Error(1)
}

func (m *MockAccounts) GetByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	args := m.Called(ctx, email)
	record, _ := args.Get(0).(*accounts.Account)
	return record, args.Error(1)
}

func (m *MockAccounts) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*accounts.Account, error) {
	args := m.Called(ctx, tx, email)
	record, _ := args.Get(0).(*accounts.Account)
	return record, args.Error(1)
}

func (m *MockAccounts) Create(ctx context.Context, record *accounts.Account) (*accounts.Account, error) {
	args := m.Called(ctx, record)
	out, _ := args.Get(0).(*accounts.Account)
	return out, args.Error(1)
}

func (m *MockAccounts) CreateTx(ctx context.Context, tx bun.IDB, record *accounts.Account) (*accounts.Account, error) {
	args := m.Called(ctx, tx, record)
	out, _ := args.Get(0).(*accounts.Account)
	return out, args.Error(1)
}

func (m *MockAccounts) Update(ctx context.Context, record *accounts.Account) (*accounts.Account, error) {
	args := m.Called(ctx, record)
	out, _ := args.Get(0).(*accounts.Account)
	return out, args.Error(1)
}

func (m *MockAccounts) UpdateTx(ctx context.Context, tx bun.IDB, record *accounts.Account) (*accounts.Account, error) {
	args := m.Called(ctx, tx, record)
	out, _ := args.Get(0).(*accounts.Account)
	return out, args.Error(1)
}

func (m *MockAccounts) Confirm(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccounts) ConfirmTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockAccounts) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAccounts) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, tx, id, passwordHash)
	return args.Error(0)
}

// MockTokens implements accounts.ConfirmationTokens
type MockTokens struct {
	mock.Mock
}

func (m *MockTokens) GetByToken(ctx context.Context, token string) (*accounts.ConfirmationToken, error) {
	args := m.Called(ctx, token)
	record, _ := args.Get(0).(*accounts.ConfirmationToken)
	return record, args.Error(1)
}

func (m *MockTokens) GetByTokenTx(ctx context.Context, tx bun.IDB, token string) (*accounts.ConfirmationToken, error) {
	args := m.Called(ctx, tx, token)
	record, _ := args.Get(0).(*accounts.ConfirmationToken)
	return record, args.Error(1)
}

func (m *MockTokens) Create(ctx context.Context, record *accounts.ConfirmationToken) (*accounts.ConfirmationToken, error) {
	args := m.Called(ctx, record)
	out, _ := args.Get(0).(*accounts.ConfirmationToken)
	return out, args.Error(1)
}

func (m *MockTokens) CreateTx(ctx context.Context, tx bun.IDB, record *accounts.ConfirmationToken) (*accounts.ConfirmationToken, error) {
	args := m.Called(ctx, tx, record)
	out, _ := args.Get(0).(*accounts.ConfirmationToken)
	return out, args.Error(1)
}

func (m *MockTokens) DeleteByToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokens) DeleteByTokenTx(ctx context.Context, tx bun.IDB, token string) error {
	args := m.Called(ctx, tx, token)
	return args.Error(0)
}

// MockCredentialManager implements accounts.CredentialManager
type MockCredentialManager struct {
	mock.Mock
}

func (m *MockCredentialManager) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockCredentialManager) ComparePasswordAndHash(password, hash string) error {
	args := m.Called(password, hash)
	return args.Error(0)
}

// MockMailer implements accounts.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendAccountConfirmation(ctx context.Context, msg accounts.Notification) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, msg accounts.Notification) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockTokenService implements accounts.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Generate(account *accounts.Account) (string, error) {
	args := m.Called(account)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) SignClaims(claims *accounts.SessionClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(tokenString string) (accounts.AuthClaims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(accounts.AuthClaims)
	return claims, args.Error(1)
}

// testConfig implements accounts.Config
type testConfig struct {
	signingKey string
	ttl        string
}

func (c testConfig) GetSigningKey() string {
	if c.signingKey == "" {
		return "test-signing-key"
	}
	return c.signingKey
}

func (c testConfig) GetSigningMethod() string { return "HS256" }
func (c testConfig) GetContextKey() string    { return "session" }
func (c testConfig) GetTokenExpiration() int  { return 24 }
func (c testConfig) GetTokenLookup() string   { return "header:Authorization" }
func (c testConfig) GetAuthScheme() string    { return "Bearer" }
func (c testConfig) GetIssuer() string        { return "test-issuer" }
func (c testConfig) GetAudience() []string    { return []string{"test-audience"} }

func (c testConfig) GetConfirmationTokenTTL() string {
	if c.ttl == "" {
		return "10m"
	}
	return c.ttl
}
