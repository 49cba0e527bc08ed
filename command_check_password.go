package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

type CheckPasswordMessage struct {
	AccountID  uuid.UUID `json:"account_id"`
	Password   string    `json:"password"`
	OnResponse func(resp *CheckPasswordResponse)
}

func (e CheckPasswordMessage) Type() string { return "account.check_password" }

type CheckPasswordResponse struct {
	Valid bool
}

// CheckPasswordHandler verifies a password against the stored hash without
// changing anything. Used to gate destructive actions behind a re-prompt.
type CheckPasswordHandler struct {
	repo        RepositoryManager
	credentials CredentialManager
}

func NewCheckPasswordHandler(repo RepositoryManager) *CheckPasswordHandler {
	return &CheckPasswordHandler{
		repo:        repo,
		credentials: NewCredentialManager(),
	}
}

func (h *CheckPasswordHandler) WithCredentialManager(credentials CredentialManager) *CheckPasswordHandler {
	if credentials != nil {
		h.credentials = credentials
	}
	return h
}

func (h *CheckPasswordHandler) Execute(ctx context.Context, event CheckPasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password check",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *CheckPasswordHandler) execute(ctx context.Context, event CheckPasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	account, err := h.repo.Accounts().GetByID(ctx, event.AccountID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrAccountNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account")
	}

	if err := h.credentials.ComparePasswordAndHash(event.Password, account.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	if event.OnResponse != nil {
		event.OnResponse(&CheckPasswordResponse{Valid: true})
	}

	return nil
}
