package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// TokenIssuer signs session tokens for a user.
type TokenIssuer interface {
	GenerateSessionToken(externalID string, md Metadata) (string, error)
}

// MemoryProvider is an in-process identity provider for local development and tests.
// Unlike a real provider, whose session tokens carry metadata until they are
// refreshed, it overlays the latest stored metadata on every session.
type MemoryProvider struct {
	mu     sync.RWMutex
	users  map[string]Profile
	issuer TokenIssuer
}

// NewMemoryProvider creates an empty MemoryProvider. issuer may be nil if
// IssueSessionToken is never called.
func NewMemoryProvider(issuer TokenIssuer) *MemoryProvider {
	return &MemoryProvider{users: make(map[string]Profile), issuer: issuer}
}

// PutUser registers or replaces a user.
func (p *MemoryProvider) PutUser(profile Profile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[profile.ExternalID] = profile
}

// IssueSessionToken signs a session token carrying the user's current metadata.
func (p *MemoryProvider) IssueSessionToken(externalID string) (string, error) {
	p.mu.RLock()
	profile, ok := p.users[externalID]
	p.mu.RUnlock()
	if !ok {
		return "", ErrUserNotFound
	}
	return p.issuer.GenerateSessionToken(externalID, profile.Metadata)
}

// CurrentSession returns the request's session with the stored metadata applied.
func (p *MemoryProvider) CurrentSession(ctx context.Context) (*Session, error) {
	s, ok := SessionFrom(ctx)
	if !ok {
		return nil, ErrNoSession
	}
	p.mu.RLock()
	if profile, ok := p.users[s.ExternalID]; ok {
		s.Metadata = profile.Metadata
	}
	p.mu.RUnlock()
	return &s, nil
}

// CurrentProfile returns the profile of the request's user.
func (p *MemoryProvider) CurrentProfile(ctx context.Context) (*Profile, error) {
	s, ok := SessionFrom(ctx)
	if !ok {
		return nil, ErrNoSession
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	profile, ok := p.users[s.ExternalID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &profile, nil
}

// UpdateMetadata replaces the stored metadata of a user.
func (p *MemoryProvider) UpdateMetadata(_ context.Context, externalID string, md Metadata) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	profile, ok := p.users[externalID]
	if !ok {
		return ErrUserNotFound
	}
	profile.Metadata = md
	p.users[externalID] = profile
	return nil
}

// Metadata returns the stored metadata of a user.
func (p *MemoryProvider) Metadata(externalID string) (Metadata, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	profile, ok := p.users[externalID]
	return profile.Metadata, ok
}

// LoadProfiles decodes a JSON array of profiles, as used to seed a MemoryProvider.
func LoadProfiles(r io.Reader) ([]Profile, error) {
	var profiles []Profile
	if err := json.NewDecoder(r).Decode(&profiles); err != nil {
		return nil, fmt.Errorf("identity: decode profiles: %w", err)
	}
	for i, p := range profiles {
		if p.ExternalID == "" {
			return nil, fmt.Errorf("identity: profile %d has no external_id", i)
		}
	}
	return profiles, nil
}
