package accounts

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the account model
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Confirmed     bool       `bun:"is_confirmed" json:"confirmed"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Profile is the public projection of an Account. The password hash never
// leaves the model, not even hashed.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Confirmed bool      `json:"confirmed"`
}

// PublicProfile returns the account attributes safe to serialize to clients
func (a *Account) PublicProfile() Profile {
	return Profile{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Confirmed: a.Confirmed,
	}
}

// ConfirmationToken is a one-time random value proving control of an email
// address. The value is the only lookup key exposed externally; the token
// references its account, the account does not own the token.
type ConfirmationToken struct {
	bun.BaseModel `bun:"table:confirmation_tokens,alias:ctk"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Token         string     `bun:"token,notnull,unique" json:"token,omitempty"`
	AccountID     uuid.UUID  `bun:"account_id,notnull,type:uuid" json:"account_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// NewConfirmationToken mints a token for the given account using the
// package level issuer. Uniqueness is enforced by the store, not here.
func NewConfirmationToken(accountID uuid.UUID) (*ConfirmationToken, error) {
	value, err := GenerateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &ConfirmationToken{
		ID:        uuid.New(),
		Token:     value,
		AccountID: accountID,
		CreatedAt: &now,
	}, nil
}

// NormalizeEmail applies the fixed email identity policy: addresses are
// compared and stored trimmed and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
