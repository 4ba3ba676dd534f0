// Package identity wraps the external managed identity provider behind a
// small CRUD-plus-token interface. Callers never see the provider SDK's error
// shape: every failure is classified into a stable Kind the synchronization
// logic can branch on.
package identity

import (
	"context"
	"errors"
	"fmt"
)

// User is the provider's view of an account, keyed by the same join key as
// the credential store.
type User struct {
	ID            string
	Email         string
	EmailVerified bool
	DisplayName   string
}

// CreateUserParams defines the fields for creating a provider user. ID is
// mandatory: the provider user key is always the credential store's join key.
type CreateUserParams struct {
	ID            string
	Email         string
	Password      string
	DisplayName   string
	EmailVerified bool
}

// UpdateUserParams defines the optional parameters for updating a provider
// user. Only the fields that are not nil will be updated.
type UpdateUserParams struct {
	Email         *string
	Password      *string
	DisplayName   *string
	EmailVerified *bool
}

// Provider is the contract the core needs from the external identity service.
type Provider interface {
	GetUser(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*User, error)
	UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*User, error)
	DeleteUser(ctx context.Context, id string) error

	// MintCustomToken issues a short-lived signed credential bound to id,
	// to be exchanged by the client for a full provider session.
	MintCustomToken(ctx context.Context, id string) (string, error)
}

// Kind classifies provider failures.
type Kind int

const (
	KindOther Kind = iota
	KindUserNotFound
	KindEmailExists
	KindIDExists
	KindUnavailable
)

// String returns a stable name for logging.
func (k Kind) String() string {
	switch k {
	case KindUserNotFound:
		return "user_not_found"
	case KindEmailExists:
		return "email_exists"
	case KindIDExists:
		return "id_exists"
	case KindUnavailable:
		return "unavailable"
	default:
		return "other"
	}
}

// Error is a classified provider failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("identity provider: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind from a provider error; any unclassified error
// reports KindOther.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}

	return KindOther
}
