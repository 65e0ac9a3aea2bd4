package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Config holds configuration for the identity provider's backend API.
type Config struct {
	BaseURL   string        // Base URL for the API (e.g., "https://api.identity.example")
	SecretKey string        // Backend secret key sent as a bearer token
	Timeout   time.Duration // HTTP request timeout
}

// HTTPProvider talks to the identity provider's backend API.
// The caller's session itself is taken from the request context, where the
// session middleware put it after verifying the session token.
type HTTPProvider struct {
	cfg    Config
	client *http.Client
}

// NewHTTPProvider creates an HTTPProvider with the given config and HTTP client.
func NewHTTPProvider(cfg Config, client *http.Client) *HTTPProvider {
	return &HTTPProvider{cfg: cfg, client: client}
}

// CurrentSession returns the verified session of the current request.
func (p *HTTPProvider) CurrentSession(ctx context.Context) (*Session, error) {
	s, ok := SessionFrom(ctx)
	if !ok {
		return nil, ErrNoSession
	}
	return &s, nil
}

// CurrentProfile fetches the full profile of the current request's user.
func (p *HTTPProvider) CurrentProfile(ctx context.Context) (*Profile, error) {
	s, err := p.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	return p.GetUser(ctx, s.ExternalID)
}

// GetUser fetches a user's profile by external id.
func (p *HTTPProvider) GetUser(ctx context.Context, externalID string) (*Profile, error) {
	var body EventUser
	if err := p.do(ctx, http.MethodGet, p.userURL(externalID, ""), nil, &body); err != nil {
		return nil, err
	}
	profile := body.Profile()
	return &profile, nil
}

// UpdateMetadata overwrites the public metadata mirror of a user.
func (p *HTTPProvider) UpdateMetadata(ctx context.Context, externalID string, md Metadata) error {
	payload := struct {
		PublicMetadata Metadata `json:"public_metadata"`
	}{PublicMetadata: md}
	return p.do(ctx, http.MethodPatch, p.userURL(externalID, "/metadata"), payload, nil)
}

func (p *HTTPProvider) userURL(externalID, suffix string) string {
	return fmt.Sprintf("%s/v1/users/%s%s", p.cfg.BaseURL, url.PathEscape(externalID), suffix)
}

// do sends a JSON request and decodes the JSON response into out when out is non-nil.
func (p *HTTPProvider) do(ctx context.Context, method, u string, in, out any) error {
	var reqBody *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.SecretKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode == http.StatusNotFound {
		return ErrUserNotFound
	}
	if res.StatusCode >= 400 {
		return fmt.Errorf("identity http %d", res.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
