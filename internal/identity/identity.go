// Package identity wraps the remote identity provider. The application
// never verifies passwords itself; account creation and lookup are
// delegated entirely to the provider.
package identity

import "context"

// User is the subset of the provider's user record the application uses.
type User struct {
	UID   string
	Email string
}

// Provider is the identity-provider port.
type Provider interface {
	// CreateUser registers a new account with the provider.
	CreateUser(ctx context.Context, email, password string) (*User, error)
	// GetUserByEmail looks up an existing account.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}
