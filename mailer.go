package accounts

import (
	"context"
	"time"
)

// Notification carries the fields every account email needs
type Notification struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

// Mailer is the transport contract for account notifications. Delivery
// mechanics (SMTP, provider API, queue) belong to the host application.
type Mailer interface {
	SendAccountConfirmation(ctx context.Context, msg Notification) error
	SendPasswordReset(ctx context.Context, msg Notification) error
}

// dispatchTimeout bounds a single delivery attempt so a stuck transport
// cannot leak goroutines forever.
const dispatchTimeout = 30 * time.Second

// NotificationDispatcher sends account notifications without ever gating the
// operation that triggered them: sends run on their own goroutine, failures
// are logged and dropped.
type NotificationDispatcher struct {
	mailer Mailer
	logger Logger
}

// NewNotificationDispatcher creates a dispatcher with sane defaults. A nil
// mailer falls back to a logging mailer, useful in development.
func NewNotificationDispatcher(mailer Mailer) *NotificationDispatcher {
	d := &NotificationDispatcher{
		mailer: mailer,
		logger: defLogger{},
	}

	if d.mailer == nil {
		d.mailer = logMailer{logger: d.logger}
	}

	return d
}

// WithLogger overrides the logger used for delivery failures. The fallback
// logging mailer follows along so dev-mode emails land on the same logger.
func (d *NotificationDispatcher) WithLogger(logger Logger) *NotificationDispatcher {
	if logger != nil {
		d.logger = logger
		if _, ok := d.mailer.(logMailer); ok {
			d.mailer = logMailer{logger: logger}
		}
	}
	return d
}

// DispatchConfirmation sends the account confirmation email, best effort.
func (d *NotificationDispatcher) DispatchConfirmation(msg Notification) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := d.mailer.SendAccountConfirmation(ctx, msg); err != nil {
			d.logger.Warn("confirmation email delivery failed", "email", msg.Email, "error", err)
		}
	}()
}

// DispatchPasswordReset sends the password reset email, best effort.
func (d *NotificationDispatcher) DispatchPasswordReset(msg Notification) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := d.mailer.SendPasswordReset(ctx, msg); err != nil {
			d.logger.Warn("password reset email delivery failed", "email", msg.Email, "error", err)
		}
	}()
}

// logMailer prints the notification instead of delivering it. The copy
// mirrors what a real template would carry: greeting, link, code, expiry.
type logMailer struct {
	logger Logger
}

func (m logMailer) SendAccountConfirmation(_ context.Context, msg Notification) error {
	m.logger.Info("confirmation email", "to", msg.Email, "name", msg.Name,
		"link", "/auth/confirm-account", "code", msg.Token,
		"expires_in", DefaultConfirmationTokenTTL)
	return nil
}

func (m logMailer) SendPasswordReset(_ context.Context, msg Notification) error {
	m.logger.Info("password reset email", "to", msg.Email, "name", msg.Name,
		"link", "/auth/new-password", "code", msg.Token,
		"expires_in", DefaultConfirmationTokenTTL)
	return nil
}
