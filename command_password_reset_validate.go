package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type ValidateResetTokenMessage struct {
	Token      string `json:"token"`
	OnResponse func(resp *ValidateResetTokenResponse)
}

func (e ValidateResetTokenMessage) Type() string { return "account.password_reset_validate" }

type ValidateResetTokenResponse struct {
	Token *ConfirmationToken
}

// ValidateResetTokenHandler checks a reset code without consuming it, so a
// recovery form can be shown only for codes that would actually work.
type ValidateResetTokenHandler struct {
	repo   RepositoryManager
	config Config
}

func NewValidateResetTokenHandler(repo RepositoryManager, config Config) *ValidateResetTokenHandler {
	return &ValidateResetTokenHandler{
		repo:   repo,
		config: config,
	}
}

func (h *ValidateResetTokenHandler) Execute(ctx context.Context, event ValidateResetTokenMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during reset token validation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ValidateResetTokenHandler) execute(ctx context.Context, event ValidateResetTokenMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	token, err := h.repo.Tokens().GetByToken(ctx, event.Token)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrTokenNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve reset token")
	}

	if err := ensureTokenUsable(token, h.config.GetConfirmationTokenTTL()); err != nil {
		return err
	}

	if event.OnResponse != nil {
		event.OnResponse(&ValidateResetTokenResponse{Token: token})
	}

	return nil
}
