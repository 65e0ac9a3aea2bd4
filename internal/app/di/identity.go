package di

import (
	"fmt"
	"log/slog"
	"os"

	"course_backend/internal/feature/user/usecase"
	"course_backend/internal/platform/config"
	infrahttp "course_backend/internal/platform/http"
	"course_backend/internal/platform/identity"
)

// NewIdentityProvider creates the identity provider adapter.
// With an API URL configured it returns the HTTP client for the provider's
// backend API. Otherwise, it falls back to the in-memory provider, which
// issues its session tokens through issuer and is seeded from
// cfg.IdentityDevUsersFile. Configuration validation only allows the
// fallback in development.
func NewIdentityProvider(cfg *config.Config, issuer identity.TokenIssuer) (usecase.IdentityProvider, error) {
	if cfg.IdentityAPIURL != "" {
		httpClient := infrahttp.NewHTTPClient(cfg.IdentityTimeout)
		return identity.NewHTTPProvider(identity.Config{
			BaseURL:   cfg.IdentityAPIURL,
			SecretKey: cfg.IdentitySecretKey,
			Timeout:   cfg.IdentityTimeout,
		}, httpClient), nil
	}

	p := identity.NewMemoryProvider(issuer)
	if cfg.IdentityDevUsersFile == "" {
		slog.Warn("IDENTITY_API_URL is not set and no IDENTITY_DEV_USERS_FILE is given; the in-memory identity provider has no users")
		return p, nil
	}

	f, err := os.Open(cfg.IdentityDevUsersFile)
	if err != nil {
		return nil, fmt.Errorf("open identity dev users: %w", err)
	}
	defer f.Close()

	profiles, err := identity.LoadProfiles(f)
	if err != nil {
		return nil, err
	}
	for _, profile := range profiles {
		p.PutUser(profile)
		token, err := p.IssueSessionToken(profile.ExternalID)
		if err != nil {
			return nil, fmt.Errorf("issue session token for %s: %w", profile.ExternalID, err)
		}
		slog.Info("seeded development identity", "external_id", profile.ExternalID, "session_token", token)
	}
	slog.Warn("IDENTITY_API_URL is not set; using the in-memory identity provider", "users", len(profiles))
	return p, nil
}
