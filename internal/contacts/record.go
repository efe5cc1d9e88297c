package contacts

import "time"

// Record is the stored shape of a submission.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Company   *string   `json:"company"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

var recordColumns = []string{"id", "name", "email", "phone", "company", "message", "created_at"}

func (r *Record) scanTargets() []any {
	return []any{&r.ID, &r.Name, &r.Email, &r.Phone, &r.Company, &r.Message, &r.CreatedAt}
}

func ToRecord(s *Submission) Record {
	return Record{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Phone:     copyText(s.Phone),
		Company:   copyText(s.Company),
		Message:   s.Message,
		CreatedAt: s.CreatedAt,
	}
}

func FromRecord(rec Record) *Submission {
	s := &Submission{
		ID:        rec.ID,
		Name:      rec.Name,
		Email:     rec.Email,
		Message:   rec.Message,
		CreatedAt: rec.CreatedAt,
	}
	if rec.Phone != nil && *rec.Phone != "" {
		s.Phone = copyText(rec.Phone)
	}
	if rec.Company != nil && *rec.Company != "" {
		s.Company = copyText(rec.Company)
	}
	return s
}
