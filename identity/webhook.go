// webhook.go - Signed user events delivered by the identity provider

package identity

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	svix "github.com/svix/svix-webhooks/go"
)

const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Verifier authenticates a raw webhook body against its signature headers.
type Verifier interface {
	Verify(payload []byte, headers http.Header) error
}

// NewVerifier returns a verifier for a "whsec_..." signing secret
// (svix-id / svix-timestamp / svix-signature headers, 5 minute tolerance).
func NewVerifier(secret string) (Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("empty webhook secret")
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, err
	}
	return wh, nil
}

// Event is the envelope of every delivery.
type Event struct {
	Type   string          `json:"type"`
	Object string          `json:"object"`
	Data   json.RawMessage `json:"data"`
}

type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// UserData is the payload of user.* events. Deleted events only carry id.
type UserData struct {
	ID             string         `json:"id"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	ImageURL       string         `json:"image_url"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
	Deleted        bool           `json:"deleted"`
}

// Email returns the first listed address, or "".
func (u UserData) Email() string {
	if len(u.EmailAddresses) == 0 {
		return ""
	}
	return strings.TrimSpace(u.EmailAddresses[0].EmailAddress)
}

// DisplayName joins first and last name, falling back to "User".
func (u UserData) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return "User"
	}
	return name
}

// ParseEvent decodes the envelope and, for user events, its data.
func ParseEvent(body []byte) (*Event, *UserData, error) {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, nil, err
	}
	if evt.Type == "" {
		return nil, nil, errors.New("missing event type")
	}
	var data UserData
	if len(evt.Data) > 0 && string(evt.Data) != "null" {
		if err := json.Unmarshal(evt.Data, &data); err != nil {
			return nil, nil, err
		}
	}
	return &evt, &data, nil
}
