// Package identity adapts the external identity provider: the caller's
// session, the full user profile, metadata write-back and lifecycle webhooks.
// It returns identity facts only and never touches the relational store.
package identity

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNoSession is returned when the request carries no verified session.
	ErrNoSession = errors.New("identity: no session")

	// ErrUserNotFound is returned when the provider does not know the external id.
	ErrUserNotFound = errors.New("identity: user not found")
)

// Metadata is the denormalized mirror of relational facts kept on the
// provider's user so that sessions can be resolved without a database read.
type Metadata struct {
	InternalID string `json:"internal_id,omitempty"`
	Role       string `json:"role,omitempty"`
}

// Linked reports whether the metadata points at an internal user.
func (m Metadata) Linked() bool {
	return m.InternalID != ""
}

// Session is the verified caller of the current request.
type Session struct {
	ExternalID string   `json:"sub"`
	Metadata   Metadata `json:"metadata"`
}

// Profile is the provider's full view of a user.
type Profile struct {
	ExternalID   string   `json:"external_id"`
	FirstName    string   `json:"first_name,omitempty"`
	LastName     string   `json:"last_name,omitempty"`
	FullName     string   `json:"full_name,omitempty"`
	Username     string   `json:"username,omitempty"`
	PrimaryEmail string   `json:"primary_email"`
	ImageURL     string   `json:"image_url,omitempty"`
	Metadata     Metadata `json:"metadata"`
}

// DisplayName returns the first non-empty of full name, first name, last name
// and username, or fallback when none is set.
func (p Profile) DisplayName(fallback string) string {
	full := p.FullName
	if full == "" {
		full = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}
	for _, s := range []string{full, p.FirstName, p.LastName, p.Username} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return fallback
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored on ctx by WithSession.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
