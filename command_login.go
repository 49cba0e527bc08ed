package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type LoginMessage struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	OnResponse func(resp *LoginResponse)
}

func (e LoginMessage) Type() string { return "account.login" }

type LoginResponse struct {
	Token   string
	Account *Account
}

// LoginHandler authenticates a confirmed account and mints a signed session
// token. An unconfirmed account gets a fresh confirmation code instead of a
// session, so the caller can point them back at the confirmation flow.
type LoginHandler struct {
	repo        RepositoryManager
	tokens      TokenService
	notifier    *NotificationDispatcher
	logger      Logger
	credentials CredentialManager
}

func NewLoginHandler(repo RepositoryManager, tokens TokenService, notifier *NotificationDispatcher) *LoginHandler {
	return &LoginHandler{
		repo:        repo,
		tokens:      tokens,
		notifier:    notifier,
		logger:      defLogger{},
		credentials: NewCredentialManager(),
	}
}

func (h *LoginHandler) WithLogger(logger Logger) *LoginHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *LoginHandler) WithCredentialManager(credentials CredentialManager) *LoginHandler {
	if credentials != nil {
		h.credentials = credentials
	}
	return h
}

func (h *LoginHandler) Execute(ctx context.Context, event LoginMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during login",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *LoginHandler) execute(ctx context.Context, event LoginMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	account, err := h.repo.Accounts().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrAccountNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for login")
	}

	if !account.Confirmed {
		if err := h.resendConfirmation(ctx, account); err != nil {
			h.logger.Warn("login: unable to reissue confirmation code", "email", account.Email, "error", err)
		}
		return ErrAccountNotConfirmed
	}

	if err := h.credentials.ComparePasswordAndHash(event.Password, account.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	signed, err := h.tokens.Generate(account)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign session token")
	}

	if event.OnResponse != nil {
		event.OnResponse(&LoginResponse{
			Token:   signed,
			Account: account,
		})
	}

	return nil
}

func (h *LoginHandler) resendConfirmation(ctx context.Context, account *Account) error {
	token, err := NewConfirmationToken(account.ID)
	if err != nil {
		return err
	}

	if token, err = h.repo.Tokens().Create(ctx, token); err != nil {
		return err
	}

	h.notifier.DispatchConfirmation(Notification{
		Email: account.Email,
		Name:  account.Name,
		Token: token.Token,
	})

	return nil
}
