package accounts_test

import (
	"context"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestChangePasswordHandlerReplacesHash(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	accountsRepo := &MockAccounts{}

	handler := accounts.NewChangePasswordHandler(repo)

	hash, err := accounts.HashPassword("current-password")
	require.NoError(t, err)

	accountID := uuid.New()
	account := &accounts.Account{
		ID:           accountID,
		Email:        "pepe.rone@example.com",
		PasswordHash: hash,
		Confirmed:    true,
	}

	repo.On("Accounts").Return(accountsRepo).Twice()
	expectRunInTx(repo)

	accountsRepo.On("GetByIDTx", mock.Anything, mock.Anything, accountID.String()).
		Return(account, nil).Once()
	accountsRepo.On("ResetPasswordTx", mock.Anything, mock.Anything, accountID, mock.MatchedBy(func(h string) bool {
		return accounts.ComparePasswordAndHash("brand-new-password", h) == nil
	})).Return(nil).Once()

	var resp *accounts.ChangePasswordResponse
	err = handler.Execute(ctx, accounts.ChangePasswordMessage{
		AccountID:       accountID,
		CurrentPassword: "current-password",
		Password:        "brand-new-password",
		OnResponse: func(r *accounts.ChangePasswordResponse) {
			resp = r
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.NoError(t, accounts.ComparePasswordAndHash("brand-new-password", resp.Account.PasswordHash))

	repo.AssertExpectations(t)
	accountsRepo.AssertExpectations(t)
}

func TestChangePasswordHandlerRejectsWrongCurrent(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	accountsRepo := &MockAccounts{}

	handler := accounts.NewChangePasswordHandler(repo)

	hash, err := accounts.HashPassword("current-password")
	require.NoError(t, err)

	accountID := uuid.New()
	account := &accounts.Account{
		ID:           accountID,
		PasswordHash: hash,
	}

	repo.On("Accounts").Return(accountsRepo).Once()
	expectRunInTx(repo)

	accountsRepo.On("GetByIDTx", mock.Anything, mock.Anything, accountID.String()).
		Return(account, nil).Once()

	err = handler.Execute(ctx, accounts.ChangePasswordMessage{
		AccountID:       accountID,
		CurrentPassword: "wrong-password",
		Password:        "brand-new-password",
	})
	require.ErrorIs(t, err, accounts.ErrCurrentPasswordInvalid)

	accountsRepo.AssertNotCalled(t, "ResetPasswordTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckPasswordHandlerAcceptsCorrectPassword(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	accountsRepo := &MockAccounts{}

	handler := accounts.NewCheckPasswordHandler(repo)

	hash, err := accounts.HashPassword("password12345")
	require.NoError(t, err)

	accountID := uuid.New()
	account := &accounts.Account{
		ID:           accountID,
		PasswordHash: hash,
	}

	repo.On("Accounts").Return(accountsRepo).Once()
	accountsRepo.On("GetByID", mock.Anything, accountID.String()).
		Return(account, nil).Once()

	var resp *accounts.CheckPasswordResponse
	err = handler.Execute(ctx, accounts.CheckPasswordMessage{
		AccountID: accountID,
		Password:  "password12345",
		OnResponse: func(r *accounts.CheckPasswordResponse) {
			resp = r
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.True(t, resp.Valid)
}

func TestCheckPasswordHandlerRejectsWrongPassword(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	accountsRepo := &MockAccounts{}

	handler := accounts.NewCheckPasswordHandler(repo)

	hash, err := accounts.HashPassword("password12345")
	require.NoError(t, err)

	accountID := uuid.New()
	account := &accounts.Account{
		ID:           accountID,
		PasswordHash: hash,
	}

	repo.On("Accounts").Return(accountsRepo).Once()
	accountsRepo.On("GetByID", mock.Anything, accountID.String()).
		Return(account, nil).Once()

	err = handler.Execute(ctx, accounts.CheckPasswordMessage{
		AccountID: accountID,
		Password:  "not-the-password",
	})
	require.ErrorIs(t, err, accounts.ErrInvalidCredentials)
}
