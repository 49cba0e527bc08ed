package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type FinalizePasswordResetMessage struct {
	Token      string `json:"token"`
	Password   string `json:"password"`
	OnResponse func(resp *FinalizePasswordResetResponse)
}

func (e FinalizePasswordResetMessage) Type() string { return "account.password_reset_finalize" }

type FinalizePasswordResetResponse struct {
	Account *Account
}

// FinalizePasswordResetHandler redeems a reset code: the new password is
// stored and the code is consumed in the same transaction.
type FinalizePasswordResetHandler struct {
	repo        RepositoryManager
	config      Config
	credentials CredentialManager
}

func NewFinalizePasswordResetHandler(repo RepositoryManager, config Config) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		repo:        repo,
		config:      config,
		credentials: NewCredentialManager(),
	}
}

func (h *FinalizePasswordResetHandler) WithCredentialManager(credentials CredentialManager) *FinalizePasswordResetHandler {
	if credentials != nil {
		h.credentials = credentials
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	account := &Account{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		token, err := h.repo.Tokens().GetByTokenTx(ctx, tx, event.Token)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrTokenNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve reset token")
		}

		if err := ensureTokenUsable(token, h.config.GetConfirmationTokenTTL()); err != nil {
			return err
		}

		hash, err := h.credentials.HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		if err := h.repo.Accounts().ResetPasswordTx(ctx, tx, token.AccountID, hash); err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to reset password")
		}

		if account, err = h.repo.Accounts().GetByIDTx(ctx, tx, token.AccountID.String()); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to reload account after reset")
		}

		if err := h.repo.Tokens().DeleteByTokenTx(ctx, tx, token.Token); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume reset token")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password reset transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&FinalizePasswordResetResponse{Account: account})
	}

	return nil
}
