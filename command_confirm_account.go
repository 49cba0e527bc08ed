package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type ConfirmAccountMessage struct {
	Token      string `json:"token"`
	OnResponse func(resp *ConfirmAccountResponse)
}

func (e ConfirmAccountMessage) Type() string { return "account.confirm" }

type ConfirmAccountResponse struct {
	Account *Account
}

// ConfirmAccountHandler redeems a confirmation code: the account is marked
// confirmed and the code is consumed in the same transaction.
type ConfirmAccountHandler struct {
	repo   RepositoryManager
	config Config
}

func NewConfirmAccountHandler(repo RepositoryManager, config Config) *ConfirmAccountHandler {
	return &ConfirmAccountHandler{
		repo:   repo,
		config: config,
	}
}

func (h *ConfirmAccountHandler) Execute(ctx context.Context, event ConfirmAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account confirmation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmAccountHandler) execute(ctx context.Context, event ConfirmAccountMessage) error {
	account := &Account{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		token, err := h.repo.Tokens().GetByTokenTx(ctx, tx, event.Token)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrTokenNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve confirmation token")
		}

		if err := ensureTokenUsable(token, h.config.GetConfirmationTokenTTL()); err != nil {
			return err
		}

		if err := h.repo.Accounts().ConfirmTx(ctx, tx, token.AccountID); err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to confirm account")
		}

		if account, err = h.repo.Accounts().GetByIDTx(ctx, tx, token.AccountID.String()); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to reload confirmed account")
		}

		if err := h.repo.Tokens().DeleteByTokenTx(ctx, tx, token.Token); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume confirmation token")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account confirmation transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&ConfirmAccountResponse{Account: account})
	}

	return nil
}
