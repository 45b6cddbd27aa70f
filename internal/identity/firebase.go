package identity

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/sirupsen/logrus"

	"fermata/internal/apperr"
)

// FirebaseProvider implements Provider on top of Firebase Authentication.
type FirebaseProvider struct {
	client *auth.Client
	logger *logrus.Logger
}

var _ Provider = (*FirebaseProvider)(nil)

// NewFirebaseProvider creates a provider backed by the given auth client.
func NewFirebaseProvider(client *auth.Client, logger *logrus.Logger) *FirebaseProvider {
	return &FirebaseProvider{
		client: client,
		logger: logger,
	}
}

// CreateUser registers the email/password pair with Firebase. Provider
// rejections (duplicate email, weak password) surface as validation
// errors with fixed messages; the raw provider error goes to the log.
func (p *FirebaseProvider) CreateUser(ctx context.Context, email, password string) (*User, error) {
	params := (&auth.UserToCreate{}).Email(email).Password(password)

	record, err := p.client.CreateUser(ctx, params)
	if err != nil {
		p.logger.WithError(err).WithField("email", email).Warn("Identity provider rejected user creation")

		if auth.IsEmailAlreadyExists(err) {
			return nil, apperr.Wrap(apperr.KindValidation, "email already registered", err)
		}
		if ctx.Err() != nil {
			return nil, apperr.Wrap(apperr.KindUnavailable, "identity provider unreachable", err)
		}
		return nil, apperr.Wrap(apperr.KindValidation, "registration rejected: check the email address and use a password of at least 6 characters", err)
	}

	return &User{UID: record.UID, Email: record.Email}, nil
}

// GetUserByEmail looks up an account. An unknown email is a not-found
// error; anything else counts as the provider being unavailable.
func (p *FirebaseProvider) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	record, err := p.client.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, apperr.Wrap(apperr.KindNotFound, "no account with that email", err)
		}
		p.logger.WithError(err).WithField("email", email).Warn("Identity provider lookup failed")
		return nil, apperr.Wrap(apperr.KindUnavailable, "identity provider unreachable", err)
	}

	return &User{UID: record.UID, Email: record.Email}, nil
}
