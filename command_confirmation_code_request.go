package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type RequestConfirmationCodeMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *RequestConfirmationCodeResponse)
}

func (e RequestConfirmationCodeMessage) Type() string { return "account.confirmation_code" }

type RequestConfirmationCodeResponse struct {
	Account *Account
	Token   *ConfirmationToken
}

// RequestConfirmationCodeHandler re-issues a confirmation code for an account
// that registered but never confirmed. Confirmed accounts get rejected.
type RequestConfirmationCodeHandler struct {
	repo     RepositoryManager
	notifier *NotificationDispatcher
}

func NewRequestConfirmationCodeHandler(repo RepositoryManager, notifier *NotificationDispatcher) *RequestConfirmationCodeHandler {
	return &RequestConfirmationCodeHandler{
		repo:     repo,
		notifier: notifier,
	}
}

func (h *RequestConfirmationCodeHandler) Execute(ctx context.Context, event RequestConfirmationCodeMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during confirmation code request",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RequestConfirmationCodeHandler) execute(ctx context.Context, event RequestConfirmationCodeMessage) error {
	account := &Account{}
	token := &ConfirmationToken{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if account, err = h.repo.Accounts().GetByEmailTx(ctx, tx, event.Email); err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account")
		}

		if account.Confirmed {
			return ErrAccountAlreadyConfirmed
		}

		if token, err = NewConfirmationToken(account.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate confirmation token")
		}

		if token, err = h.repo.Tokens().CreateTx(ctx, tx, token); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store confirmation token")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "confirmation code request failed")
	}

	h.notifier.DispatchConfirmation(Notification{
		Email: account.Email,
		Name:  account.Name,
		Token: token.Token,
	})

	if event.OnResponse != nil {
		event.OnResponse(&RequestConfirmationCodeResponse{
			Account: account,
			Token:   token,
		})
	}

	return nil
}
