package events

import "time"

// Event is a versioned domain event written to the outbox.
type Event interface {
	EventType() string
}

const (
	TypeApplicationSubmitted     = "application.submitted.v1"
	TypeApplicationStatusChanged = "application.status_changed.v1"
	TypeContactReceived          = "contact.received.v1"
)

type ApplicationSubmittedV1 struct {
	ApplicationID string    `json:"application_id"`
	CompanyName   string    `json:"company_name"`
	OwnerName     string    `json:"owner_name"`
	Email         string    `json:"email"`
	BusinessType  string    `json:"business_type"`
	State         string    `json:"state"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

func (ApplicationSubmittedV1) EventType() string { return TypeApplicationSubmitted }

type ApplicationStatusChangedV1 struct {
	ApplicationID string    `json:"application_id"`
	CompanyName   string    `json:"company_name"`
	Email         string    `json:"email"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	ChangedAt     time.Time `json:"changed_at"`
}

func (ApplicationStatusChangedV1) EventType() string { return TypeApplicationStatusChanged }

type ContactReceivedV1 struct {
	ContactID  string    `json:"contact_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Company    string    `json:"company,omitempty"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"received_at"`
}

func (ContactReceivedV1) EventType() string { return TypeContactReceived }
