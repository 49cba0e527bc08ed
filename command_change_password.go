package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ChangePasswordMessage struct {
	AccountID       uuid.UUID `json:"account_id"`
	CurrentPassword string    `json:"current_password"`
	Password        string    `json:"password"`
	OnResponse      func(resp *ChangePasswordResponse)
}

func (e ChangePasswordMessage) Type() string { return "account.change_password" }

type ChangePasswordResponse struct {
	Account *Account
}

// ChangePasswordHandler replaces the password of a logged in account after
// verifying the current one.
type ChangePasswordHandler struct {
	repo        RepositoryManager
	credentials CredentialManager
}

func NewChangePasswordHandler(repo RepositoryManager) *ChangePasswordHandler {
	return &ChangePasswordHandler{
		repo:        repo,
		credentials: NewCredentialManager(),
	}
}

func (h *ChangePasswordHandler) WithCredentialManager(credentials CredentialManager) *ChangePasswordHandler {
	if credentials != nil {
		h.credentials = credentials
	}
	return h
}

func (h *ChangePasswordHandler) Execute(ctx context.Context, event ChangePasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangePasswordHandler) execute(ctx context.Context, event ChangePasswordMessage) error {
	account := &Account{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if account, err = h.repo.Accounts().GetByIDTx(ctx, tx, event.AccountID.String()); err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account")
		}

		if err := h.credentials.ComparePasswordAndHash(event.CurrentPassword, account.PasswordHash); err != nil {
			return ErrCurrentPasswordInvalid
		}

		hash, err := h.credentials.HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		if err := h.repo.Accounts().ResetPasswordTx(ctx, tx, account.ID, hash); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store new password")
		}

		account.PasswordHash = hash
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password change transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&ChangePasswordResponse{Account: account})
	}

	return nil
}
