package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type RegisterAccountMessage struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	OnResponse func(resp *RegisterAccountResponse)
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

type RegisterAccountResponse struct {
	Account *Account
	Token   *ConfirmationToken
}

// RegisterAccountHandler creates an unconfirmed account, issues its
// confirmation code, and mails the code out after the transaction commits.
type RegisterAccountHandler struct {
	repo        RepositoryManager
	notifier    *NotificationDispatcher
	config      Config
	credentials CredentialManager
}

func NewRegisterAccountHandler(repo RepositoryManager, notifier *NotificationDispatcher, config Config) *RegisterAccountHandler {
	return &RegisterAccountHandler{
		repo:        repo,
		notifier:    notifier,
		config:      config,
		credentials: NewCredentialManager(),
	}
}

func (h *RegisterAccountHandler) WithCredentialManager(credentials CredentialManager) *RegisterAccountHandler {
	if credentials != nil {
		h.credentials = credentials
	}
	return h
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	account := &Account{}
	token := &ConfirmationToken{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := h.credentials.HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		account.Name = event.Name
		account.Email = event.Email
		account.PasswordHash = hash

		if account, err = h.repo.Accounts().CreateTx(ctx, tx, account); err != nil {
			// the store enforces email uniqueness
			if IsUniqueConstraintError(err) {
				return goerrors.Wrap(err, goerrors.CategoryConflict, "this email is already registered").
					WithTextCode(TextCodeEmailRegistered).
					WithCode(goerrors.CodeConflict).
					WithMetadata(map[string]any{"email": event.Email})
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create account")
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
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed")
	}

	h.notifier.DispatchConfirmation(Notification{
		Email: account.Email,
		Name:  account.Name,
		Token: token.Token,
	})

	if event.OnResponse != nil {
		event.OnResponse(&RegisterAccountResponse{
			Account: account,
			Token:   token,
		})
	}

	return nil
}
