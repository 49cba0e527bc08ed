package accounts_test

import (
	"context"
	"testing"
	"time"

	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRequestConfirmationCodeIssuesFreshCode(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	accountsRepo := &MockAccounts{}
	tokens := &MockTokens{}
	mailer := newNotificationRecorder()

	handler := accounts.NewRequestConfirmationCodeHandler(
		repo,
		accounts.NewNotificationDispatcher(mailer).WithLogger(testLogger{}),
	)

	accountID := uuid.New()
	account := &accounts.Account{
		ID:        accountID,
		Name:      "Pepe Rone",
		Email:     "pepe.rone@example.com",
		Confirmed: false,
	}

	repo.On("Accounts").Return(accountsRepo).Once()
	repo.On("Tokens").Return(tokens).Once()
	expectRunInTx(repo)

	accountsRepo.On("GetByEmailTx", mock.Anything, mock.Anything, "pepe.rone@example.com").
		Return(account, nil).Once()

	tokens.On("CreateTx", mock.Anything, mock.Anything, mock.MatchedBy(func(tk *accounts.ConfirmationToken) bool {
		return tk.AccountID == accountID && tk.Token != ""
	})).Return(&accounts.ConfirmationToken{
		ID:        uuid.New(),
		Token:     "fresh-code",
		AccountID: accountID,
	}, nil).Once()

	err := handler.Execute(ctx, accounts.RequestConfirmationCodeMessage{
		Email: "pepe.rone@example.com",
	})
	require.NoError(t, err)

	msg := mailer.waitConfirmation(t)
	require.Equal(t, "fresh-code", msg.Token)

	repo.AssertExpectations(t)
	accountsRepo.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestRequestConfirmationCodeAlreadyConfirmed(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	accountsRepo := &MockAccounts{}
	mailer := newNotificationRecorder()

	handler := accounts.NewRequestConfirmationCodeHandler(
		repo,
		accounts.NewNotificationDispatcher(mailer).WithLogger(testLogger{}),
	)

	repo.On("Accounts").Return(accountsRepo).Once()
	expectRunInTx(repo)

	accountsRepo.On("GetByEmailTx", mock.Anything, mock.Anything, "pepe.rone@example.com").
		Return(&accounts.Account{
			ID:        uuid.New(),
			Email:     "pepe.rone@example.com",
			Confirmed: true,
		}, nil).Once()

	err := handler.Execute(ctx, accounts.RequestConfirmationCodeMessage{
		Email: "pepe.rone@example.com",
	})
	require.ErrorIs(t, err, accounts.ErrAccountAlreadyConfirmed)

	select {
	case <-mailer.confirmations:
		t.Fatal("no notification expected for a confirmed account")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRequestConfirmationCodeUnknownEmail(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	accountsRepo := &MockAccounts{}

	handler := accounts.NewRequestConfirmationCodeHandler(
		repo,
		accounts.NewNotificationDispatcher(newNotificationRecorder()).WithLogger(testLogger{}),
	)

	repo.On("Accounts").Return(accountsRepo).Once()
	expectRunInTx(repo)

	accountsRepo.On("GetByEmailTx", mock.Anything, mock.Anything, "missing@example.com").
		Return(nil, repository.NewRecordNotFound()).Once()

	err := handler.Execute(ctx, accounts.RequestConfirmationCodeMessage{
		Email: "missing@example.com",
	})
	require.ErrorIs(t, err, accounts.ErrAccountNotFound)
}
