package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	svix "github.com/svix/svix-webhooks/go"
)

// ErrInvalidSignature is returned when a webhook delivery cannot be proven to
// come from the identity provider. Nothing may be mutated after it.
var ErrInvalidSignature = errors.New("identity: invalid webhook signature")

// Webhook delivery headers.
const (
	HeaderWebhookID        = "webhook-id"
	HeaderWebhookTimestamp = "webhook-timestamp"
	HeaderWebhookSignature = "webhook-signature"
)

// EventType names a user lifecycle notification.
type EventType string

const (
	EventUserCreated EventType = "user.created"
	EventUserUpdated EventType = "user.updated"
	EventUserDeleted EventType = "user.deleted"
)

// Event is a verified lifecycle notification.
type Event struct {
	Type EventType `json:"type"`
	Data EventUser `json:"data"`
}

// EmailAddress is one of a user's addresses as reported by the provider.
type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// EventUser is the user payload of a lifecycle notification.
// Deletion events carry only the id.
type EventUser struct {
	ID                    string         `json:"id"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	Username              string         `json:"username"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	ImageURL              string         `json:"image_url"`
	PublicMetadata        Metadata       `json:"public_metadata"`
}

// PrimaryEmail returns the address marked primary, falling back to the first one.
func (u EventUser) PrimaryEmail() string {
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID && e.EmailAddress != "" {
			return e.EmailAddress
		}
	}
	for _, e := range u.EmailAddresses {
		if e.EmailAddress != "" {
			return e.EmailAddress
		}
	}
	return ""
}

// Profile converts the payload to the same shape the provider API returns.
func (u EventUser) Profile() Profile {
	return Profile{
		ExternalID:   u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Username:     u.Username,
		PrimaryEmail: u.PrimaryEmail(),
		ImageURL:     u.ImageURL,
		Metadata:     u.PublicMetadata,
	}
}

// WebhookVerifier checks webhook signatures with the Standard Webhooks scheme:
// an HMAC-SHA256 over "<id>.<timestamp>.<body>" sent as one or more space
// separated "v1,<signature>" entries, with a five minute timestamp tolerance.
type WebhookVerifier struct {
	wh *svix.Webhook
}

// NewWebhookVerifier creates a verifier. A "whsec_" prefixed secret is base64
// decoded; any other secret is used as the raw key.
func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	if secret == "" {
		return nil, errors.New("identity: webhook secret is empty")
	}
	var (
		wh  *svix.Webhook
		err error
	)
	if strings.HasPrefix(secret, "whsec_") {
		wh, err = svix.NewWebhook(secret)
	} else {
		wh, err = svix.NewWebhookRaw([]byte(secret))
	}
	if err != nil {
		return nil, fmt.Errorf("identity: decode webhook secret: %w", err)
	}
	return &WebhookVerifier{wh: wh}, nil
}

// Verify authenticates body against the delivery headers and decodes the event.
func (v *WebhookVerifier) Verify(h http.Header, body []byte) (*Event, error) {
	if h.Get(HeaderWebhookID) == "" || h.Get(HeaderWebhookTimestamp) == "" || h.Get(HeaderWebhookSignature) == "" {
		return nil, fmt.Errorf("%w: missing headers", ErrInvalidSignature)
	}
	if err := v.wh.Verify(body, h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, fmt.Errorf("identity: decode webhook event: %w", err)
	}
	return &evt, nil
}

// Sign returns the "v1,<signature>" header value for a delivery.
func (v *WebhookVerifier) Sign(id string, sent time.Time, body []byte) (string, error) {
	return v.wh.Sign(id, sent, body)
}
