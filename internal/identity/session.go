// Package identity resolves who is using the workspace: a named guest whose
// progress stays on this machine, or an authenticated user whose progress
// lives in the remote document store.
package identity

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrEmptyName            = errors.New("name must not be empty")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidToken         = errors.New("invalid token")
	ErrNotConfigured        = errors.New("authentication is not configured")
)

// FailedLoginMessage is shown to the user when sign-in fails.
const FailedLoginMessage = "Failed to login. Please try again."

// Kind distinguishes guest and authenticated sessions.
type Kind int

const (
	KindGuest Kind = iota
	KindAuthenticated
)

func (k Kind) String() string {
	if k == KindAuthenticated {
		return "authenticated"
	}
	return "guest"
}

// Identity is a signed-in user as reported by a Provider.
type Identity struct {
	ID          string
	DisplayName string
	Email       string
	AvatarURL   string
}

// Session is the active identity. Guests only carry a display name.
type Session struct {
	Kind        Kind
	ID          string
	DisplayName string
	Email       string
	AvatarURL   string
}

// GuestSession builds a guest session for name.
func GuestSession(name string) Session {
	return Session{Kind: KindGuest, DisplayName: name}
}

// AuthenticatedSession builds a session for id.
func AuthenticatedSession(id Identity) Session {
	return Session{
		Kind:        KindAuthenticated,
		ID:          id.ID,
		DisplayName: id.DisplayName,
		Email:       id.Email,
		AvatarURL:   id.AvatarURL,
	}
}

func (s Session) IsGuest() bool { return s.Kind == KindGuest }

// StorageKey is the key the session's solved mapping is stored under.
func (s Session) StorageKey() string {
	if s.IsGuest() {
		return ""
	}
	return s.ID
}

// Label is a short description for headers.
func (s Session) Label() string {
	name := s.DisplayName
	if name == "" {
		name = s.ID
	}
	if s.IsGuest() {
		return name + " (guest)"
	}
	return name
}

// Provider is an external authentication service.
type Provider interface {
	// Current returns the signed-in identity, or nil when nobody is.
	Current(ctx context.Context) (*Identity, error)

	// SignIn exchanges a credential for an identity.
	SignIn(ctx context.Context, credential string) (*Identity, error)

	SignOut(ctx context.Context) error

	// Subscribe registers fn for every sign-in (non-nil) and sign-out (nil).
	// The returned func cancels the subscription.
	Subscribe(fn func(*Identity)) (cancel func())
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}
