package accounts

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ConfirmationTokens stores the single use codes mailed out for account
// confirmation and password resets.
type ConfirmationTokens interface {
	GetByToken(ctx context.Context, token string) (*ConfirmationToken, error)
	GetByTokenTx(ctx context.Context, tx bun.IDB, token string) (*ConfirmationToken, error)
	Create(ctx context.Context, record *ConfirmationToken) (*ConfirmationToken, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *ConfirmationToken) (*ConfirmationToken, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteByTokenTx(ctx context.Context, tx bun.IDB, token string) error
}

type tokensRepo struct {
	repository.Repository[*ConfirmationToken]
	db *bun.DB
}

var _ ConfirmationTokens = (*tokensRepo)(nil)

// NewConfirmationTokensRepository builds the bun backed ConfirmationTokens store
func NewConfirmationTokensRepository(db *bun.DB) ConfirmationTokens {
	repo := repository.NewRepository[*ConfirmationToken](db, repository.ModelHandlers[*ConfirmationToken]{
		NewRecord: func() *ConfirmationToken { return &ConfirmationToken{} },
		GetID: func(t *ConfirmationToken) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *ConfirmationToken, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	return &tokensRepo{
		Repository: repo,
		db:         db,
	}
}

func (r *tokensRepo) GetByToken(ctx context.Context, token string) (*ConfirmationToken, error) {
	return r.GetByTokenTx(ctx, r.db, token)
}

func (r *tokensRepo) GetByTokenTx(ctx context.Context, tx bun.IDB, token string) (*ConfirmationToken, error) {
	record := &ConfirmationToken{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"token": token})
		}
		return nil, err
	}

	return record, nil
}

func (r *tokensRepo) Create(ctx context.Context, record *ConfirmationToken) (*ConfirmationToken, error) {
	return r.CreateTx(ctx, r.db, record)
}

func (r *tokensRepo) CreateTx(ctx context.Context, tx bun.IDB, record *ConfirmationToken) (*ConfirmationToken, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.Repository.CreateTx(ctx, tx, record)
}

func (r *tokensRepo) DeleteByToken(ctx context.Context, token string) error {
	return r.DeleteByTokenTx(ctx, r.db, token)
}

func (r *tokensRepo) DeleteByTokenTx(ctx context.Context, tx bun.IDB, token string) error {
	_, err := tx.NewDelete().
		Model((*ConfirmationToken)(nil)).
		Where("?TableAlias.token = ?", token).
		Exec(ctx)
	return err
}
