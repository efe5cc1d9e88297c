package applications

import "time"

// Status is the lifecycle state of an application.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

// Statuses lists every lifecycle state in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusProcessing, StatusCompleted, StatusRejected}
}

// ParseStatus returns the Status named by s.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses() {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Terminal reports whether no further transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// BusinessType is the kind of business the LLC will run.
type BusinessType string

const (
	BusinessEcommerce  BusinessType = "ecommerce"
	BusinessConsulting BusinessType = "consulting"
	BusinessTechnology BusinessType = "technology"
	BusinessRealEstate BusinessType = "real-estate"
	BusinessOther      BusinessType = "other"
)

var businessTypes = map[BusinessType]struct{}{
	BusinessEcommerce:  {},
	BusinessConsulting: {},
	BusinessTechnology: {},
	BusinessRealEstate: {},
	BusinessOther:      {},
}

var memberCounts = map[string]struct{}{
	"1": {}, "2": {}, "3": {}, "4": {}, "5+": {},
}

// Application is one LLC formation intake submission.
type Application struct {
	ID                string       `json:"id"`
	CompanyName       string       `json:"companyName"`
	OwnerName         string       `json:"ownerName"`
	Email             string       `json:"email"`
	Phone             string       `json:"phone"`
	Address           string       `json:"address"`
	City              string       `json:"city"`
	State             string       `json:"state"`
	ZipCode           string       `json:"zipCode"`
	Country           string       `json:"country"`
	BusinessType      BusinessType `json:"businessType"`
	Members           string       `json:"members"`
	EINNeeded         bool         `json:"einNeeded"`
	BankAccountNeeded bool         `json:"bankAccountNeeded"`
	AdditionalInfo    *string      `json:"additionalInfo,omitempty"`
	Status            Status       `json:"status"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// Clone returns a deep copy so callers never share the optional text pointer.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	cp := *a
	if a.AdditionalInfo != nil {
		info := *a.AdditionalInfo
		cp.AdditionalInfo = &info
	}
	return &cp
}

// CreateApplicationRequest is the intake form as submitted by the browser.
// Ein and BankAccount carry the form's yes/no selectors. Status is accepted
// on the wire but always overwritten.
type CreateApplicationRequest struct {
	CompanyName    string `json:"companyName"`
	OwnerName      string `json:"ownerName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	City           string `json:"city"`
	State          string `json:"state"`
	ZipCode        string `json:"zipCode"`
	Country        string `json:"country"`
	BusinessType   string `json:"businessType"`
	Members        string `json:"members"`
	Ein            string `json:"ein"`
	BankAccount    string `json:"bankAccount"`
	AdditionalInfo string `json:"additionalInfo"`
	Status         string `json:"status,omitempty"`
}
