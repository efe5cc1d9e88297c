package contacts

import (
	"errors"
	"strings"
	"time"

	"github.com/wolfman30/llc-formation-platform/internal/intake"
)

var (
	// ErrNilSubmission is returned when a nil submission is handed to a repository
	ErrNilSubmission = errors.New("contacts: submission is nil")
)

// Submission is a message left through the contact form. It never changes
// after insert.
type Submission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Company   *string   `json:"company,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a deep copy.
func (s *Submission) Clone() *Submission {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Phone = copyText(s.Phone)
	cp.Company = copyText(s.Company)
	return &cp
}

func copyText(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// CreateContactRequest is the contact form as posted.
type CreateContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Message string `json:"message"`
}

// Validate checks the contact form and returns a normalized submission.
func Validate(req CreateContactRequest) (*Submission, error) {
	if err := intake.RequireAll(
		intake.Field{Name: "name", Value: req.Name},
		intake.Field{Name: "email", Value: req.Email},
		intake.Field{Name: "message", Value: req.Message},
	); err != nil {
		return nil, err
	}
	if !intake.ValidEmail(req.Email) {
		return nil, intake.Invalid("email", "must look like name@domain")
	}
	return &Submission{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   intake.OptionalText(req.Phone),
		Company: intake.OptionalText(req.Company),
		Message: strings.TrimSpace(req.Message),
	}, nil
}
