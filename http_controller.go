package accounts

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// AccountsController exposes the account lifecycle over JSON endpoints.
type AccountsController struct {
	repo          RepositoryManager
	config        Config
	register      *RegisterAccountHandler
	confirm       *ConfirmAccountHandler
	requestCode   *RequestConfirmationCodeHandler
	login         *LoginHandler
	resetInit     *InitializePasswordResetHandler
	resetValidate *ValidateResetTokenHandler
	resetFinalize *FinalizePasswordResetHandler
	updateProfile *UpdateProfileHandler
	changePass    *ChangePasswordHandler
	checkPass     *CheckPasswordHandler
	Logger        Logger
}

// NewAccountsController wires the command handlers behind the HTTP surface.
func NewAccountsController(repo RepositoryManager, tokens TokenService, notifier *NotificationDispatcher, config Config) *AccountsController {
	return &AccountsController{
		repo:          repo,
		config:        config,
		register:      NewRegisterAccountHandler(repo, notifier, config),
		confirm:       NewConfirmAccountHandler(repo, config),
		requestCode:   NewRequestConfirmationCodeHandler(repo, notifier),
		login:         NewLoginHandler(repo, tokens, notifier),
		resetInit:     NewInitializePasswordResetHandler(repo, notifier),
		resetValidate: NewValidateResetTokenHandler(repo, config),
		resetFinalize: NewFinalizePasswordResetHandler(repo, config),
		updateProfile: NewUpdateProfileHandler(repo),
		changePass:    NewChangePasswordHandler(repo),
		checkPass:     NewCheckPasswordHandler(repo),
		Logger:        defLogger{},
	}
}

func (a *AccountsController) WithLogger(logger Logger) *AccountsController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// RegisterRoutes mounts the lifecycle endpoints. The protected middleware
// guards every route that needs an authenticated session.
func (a *AccountsController) RegisterRoutes(group RouteRegistrar, protected router.MiddlewareFunc) {
	group.Post("/account", a.RegisterAccount)
	group.Post("/account/confirm", a.ConfirmAccount)
	group.Post("/account/resend", a.RequestConfirmationCode)
	group.Post("/auth/login", a.Login)
	group.Post("/account/forgot-password", a.ForgotPassword)
	group.Post("/account/validate-token", a.ValidateResetToken)
	group.Post("/account/reset-password/:token", a.ResetPassword)

	group.Get("/account/me", a.Me, protected)
	group.Put("/account/profile", a.UpdateProfile, protected)
	group.Put("/account/password", a.ChangePassword, protected)
	group.Post("/account/check-password", a.CheckPassword, protected)
}

// RegisterAccountPayload is the registration body
type RegisterAccountPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r RegisterAccountPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AccountsController) RegisterAccount(ctx router.Context) error {
	payload := new(RegisterAccountPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	err := a.register.Execute(ctx.Context(), RegisterAccountMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"message": "Account created, check your email to confirm it",
	})
}

// TokenPayload carries a confirmation or reset code
type TokenPayload struct {
	Token string `json:"token"`
}

// Validate will run validation rules
func (r TokenPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

func (a *AccountsController) ConfirmAccount(ctx router.Context) error {
	payload := new(TokenPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	err := a.confirm.Execute(ctx.Context(), ConfirmAccountMessage{
		Token: payload.Token,
	})
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"message": "Account confirmed",
	})
}

// EmailPayload carries a single email address
type EmailPayload struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r EmailPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AccountsController) RequestConfirmationCode(ctx router.Context) error {
	payload := new(EmailPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	err := a.requestCode.Execute(ctx.Context(), RequestConfirmationCodeMessage{
		Email: payload.Email,
	})
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"message": "We sent you a new confirmation code, check your email",
	})
}

// LoginPayload is the credentials body
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AccountsController) Login(ctx router.Context) error {
	payload := new(LoginPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	var resp *LoginResponse
	err := a.login.Execute(ctx.Context(), LoginMessage{
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(r *LoginResponse) {
			resp = r
		},
	})
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"token": resp.Token,
	})
}

func (a *AccountsController) ForgotPassword(ctx router.Context) error {
	payload := new(EmailPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	err := a.resetInit.Execute(ctx.Context(), InitializePasswordResetMessage{
		Email: payload.Email,
	})
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"message": "Check your email for instructions",
	})
}

func (a *AccountsController) ValidateResetToken(ctx router.Context) error {
	payload := new(TokenPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	err := a.resetValidate.Execute(ctx.Context(), ValidateResetTokenMessage{
		Token: payload.Token,
	})
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"message": "Valid token, set your new password",
	})
}

// PasswordPayload carries a new password
type PasswordPayload struct {
	Password string `json:"password"`
}

// Validate will run validation rules
func (r PasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AccountsController) ResetPassword(ctx router.Context) error {
	token := ctx.Param("token")
	payload := new(PasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	err := a.resetFinalize.Execute(ctx.Context(), FinalizePasswordResetMessage{
		Token:    token,
		Password: payload.Password,
	})
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"message": "Password updated",
	})
}

func (a *AccountsController) Me(ctx router.Context) error {
	account, err := a.sessionAccount(ctx)
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusOK, account.PublicProfile())
}

// UpdateProfilePayload is the profile body
type UpdateProfilePayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate will run validation rules
func (r UpdateProfilePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AccountsController) UpdateProfile(ctx router.Context) error {
	session, err := GetRouterSession(ctx, a.config.GetContextKey())
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	accountID, err := session.GetAccountUUID()
	if err != nil {
		return a.errorResponse(ctx, ErrSessionMalformed)
	}

	payload := new(UpdateProfilePayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	err = a.updateProfile.Execute(ctx.Context(), UpdateProfileMessage{
		AccountID: accountID,
		Name:      payload.Name,
		Email:     payload.Email,
	})
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"message": "Profile updated",
	})
}

// ChangePasswordPayload is the password change body
type ChangePasswordPayload struct {
	CurrentPassword string `json:"current_password"`
	Password        string `json:"password"`
}

// Validate will run validation rules
func (r ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AccountsController) ChangePassword(ctx router.Context) error {
	session, err := GetRouterSession(ctx, a.config.GetContextKey())
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	accountID, err := session.GetAccountUUID()
	if err != nil {
		return a.errorResponse(ctx, ErrSessionMalformed)
	}

	payload := new(ChangePasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	err = a.changePass.Execute(ctx.Context(), ChangePasswordMessage{
		AccountID:       accountID,
		CurrentPassword: payload.CurrentPassword,
		Password:        payload.Password,
	})
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"message": "Password changed",
	})
}

func (a *AccountsController) CheckPassword(ctx router.Context) error {
	session, err := GetRouterSession(ctx, a.config.GetContextKey())
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	accountID, err := session.GetAccountUUID()
	if err != nil {
		return a.errorResponse(ctx, ErrSessionMalformed)
	}

	payload := new(PasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(ctx, err)
	}

	err = a.checkPass.Execute(ctx.Context(), CheckPasswordMessage{
		AccountID: accountID,
		Password:  payload.Password,
	})
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"message": "Correct password",
	})
}

func (a *AccountsController) sessionAccount(ctx router.Context) (*Account, error) {
	session, err := GetRouterSession(ctx, a.config.GetContextKey())
	if err != nil {
		return nil, err
	}

	account, err := a.repo.Accounts().GetByID(ctx.Context(), session.GetAccountID())
	if err != nil {
		return nil, ErrAccountNotFound
	}

	return account, nil
}

func (a *AccountsController) badRequest(ctx router.Context, err error) error {
	a.Logger.Error("accounts controller bind error", "error", err)
	return ctx.JSON(router.StatusBadRequest, map[string]string{
		"error": "invalid request payload",
	})
}

func (a *AccountsController) validationError(ctx router.Context, err error) error {
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": FormatValidationErrorToMap(err),
	})
}

func (a *AccountsController) errorResponse(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := StatusForError(richErr)

	if status >= 500 {
		a.Logger.Error("accounts controller error", "error", richErr.Message, "category", richErr.Category)
		return ctx.JSON(status, map[string]string{
			"error": "An unexpected server error occurred",
		})
	}

	body := map[string]any{
		"error": richErr.Message,
	}
	if richErr.TextCode != "" {
		body["code"] = richErr.TextCode
	}

	return ctx.JSON(status, body)
}

// StatusForError maps a rich error to the HTTP status of the response
func StatusForError(err *errors.Error) int {
	if err == nil {
		return router.StatusOK
	}

	if err.Code > 0 {
		return err.Code
	}

	switch err.Category {
	case errors.CategoryConflict:
		return router.StatusConflict
	case errors.CategoryNotFound:
		return router.StatusNotFound
	case errors.CategoryAuth, errors.CategoryAuthz:
		return router.StatusUnauthorized
	case errors.CategoryValidation, errors.CategoryBadInput:
		return router.StatusBadRequest
	default:
		return router.StatusInternalServerError
	}
}

// FormatValidationErrorToMap flattens ozzo validation errors to field messages
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			out[field] = ferr.Error()
		}
		return out
	}

	out["error"] = err.Error()
	return out
}

// ValidateStringEquals builds a rule that checks two fields carry equal values
func ValidateStringEquals(expected string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != expected {
			return fmt.Errorf("values do not match")
		}
		return nil
	}
}
