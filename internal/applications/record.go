package applications

import (
	"fmt"
	"time"
)

// Record is the gateway-side shape of an application. Field names follow
// the storage convention (snake_case) and match the table columns.
type Record struct {
	ID                string    `json:"id"`
	CompanyName       string    `json:"company_name"`
	OwnerName         string    `json:"owner_name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	Address           string    `json:"address"`
	City              string    `json:"city"`
	State             string    `json:"state"`
	ZipCode           string    `json:"zip_code"`
	Country           string    `json:"country"`
	BusinessType      string    `json:"business_type"`
	Members           string    `json:"members"`
	EINNeeded         bool      `json:"ein_needed"`
	BankAccountNeeded bool      `json:"bank_account_needed"`
	AdditionalInfo    *string   `json:"additional_info"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// recordColumns is the column order used by every SQL statement and by
// Record.scanTargets.
var recordColumns = []string{
	"id", "company_name", "owner_name", "email", "phone",
	"address", "city", "state", "zip_code", "country",
	"business_type", "members", "ein_needed", "bank_account_needed",
	"additional_info", "status", "created_at", "updated_at",
}

func (r *Record) scanTargets() []any {
	return []any{
		&r.ID, &r.CompanyName, &r.OwnerName, &r.Email, &r.Phone,
		&r.Address, &r.City, &r.State, &r.ZipCode, &r.Country,
		&r.BusinessType, &r.Members, &r.EINNeeded, &r.BankAccountNeeded,
		&r.AdditionalInfo, &r.Status, &r.CreatedAt, &r.UpdatedAt,
	}
}

// ToRecord maps an application onto the gateway shape.
func ToRecord(a *Application) Record {
	rec := Record{
		ID:                a.ID,
		CompanyName:       a.CompanyName,
		OwnerName:         a.OwnerName,
		Email:             a.Email,
		Phone:             a.Phone,
		Address:           a.Address,
		City:              a.City,
		State:             a.State,
		ZipCode:           a.ZipCode,
		Country:           a.Country,
		BusinessType:      string(a.BusinessType),
		Members:           a.Members,
		EINNeeded:         a.EINNeeded,
		BankAccountNeeded: a.BankAccountNeeded,
		Status:            string(a.Status),
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	if a.AdditionalInfo != nil {
		info := *a.AdditionalInfo
		rec.AdditionalInfo = &info
	}
	return rec
}

// FromRecord maps a gateway row back to an application. Rows whose status
// is outside the lifecycle are rejected rather than surfaced.
func FromRecord(rec Record) (*Application, error) {
	status, ok := ParseStatus(rec.Status)
	if !ok {
		return nil, fmt.Errorf("applications: record %s has unknown status %q", rec.ID, rec.Status)
	}
	app := &Application{
		ID:                rec.ID,
		CompanyName:       rec.CompanyName,
		OwnerName:         rec.OwnerName,
		Email:             rec.Email,
		Phone:             rec.Phone,
		Address:           rec.Address,
		City:              rec.City,
		State:             rec.State,
		ZipCode:           rec.ZipCode,
		Country:           rec.Country,
		BusinessType:      BusinessType(rec.BusinessType),
		Members:           rec.Members,
		EINNeeded:         rec.EINNeeded,
		BankAccountNeeded: rec.BankAccountNeeded,
		Status:            status,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	}
	if rec.AdditionalInfo != nil && *rec.AdditionalInfo != "" {
		info := *rec.AdditionalInfo
		app.AdditionalInfo = &info
	}
	return app, nil
}
