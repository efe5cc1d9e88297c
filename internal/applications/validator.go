package applications

import (
	"strings"

	"github.com/wolfman30/llc-formation-platform/internal/intake"
)

// Validate checks a submitted form and returns the normalized application
// ready for insertion. It never touches storage.
func Validate(req CreateApplicationRequest) (*Application, error) {
	if err := intake.RequireAll(
		intake.Field{Name: "companyName", Value: req.CompanyName},
		intake.Field{Name: "ownerName", Value: req.OwnerName},
		intake.Field{Name: "email", Value: req.Email},
		intake.Field{Name: "phone", Value: req.Phone},
		intake.Field{Name: "address", Value: req.Address},
		intake.Field{Name: "city", Value: req.City},
		intake.Field{Name: "state", Value: req.State},
		intake.Field{Name: "zipCode", Value: req.ZipCode},
		intake.Field{Name: "country", Value: req.Country},
		intake.Field{Name: "businessType", Value: req.BusinessType},
		intake.Field{Name: "members", Value: req.Members},
	); err != nil {
		return nil, err
	}

	if !intake.ValidEmail(req.Email) {
		return nil, intake.Invalid("email", "must look like name@domain")
	}

	businessType := BusinessType(strings.TrimSpace(req.BusinessType))
	if _, ok := businessTypes[businessType]; !ok {
		return nil, intake.Invalid("businessType", "unsupported business type")
	}

	members := strings.TrimSpace(req.Members)
	if _, ok := memberCounts[members]; !ok {
		return nil, intake.Invalid("members", "must be one of 1, 2, 3, 4, 5+")
	}

	return &Application{
		CompanyName:       strings.TrimSpace(req.CompanyName),
		OwnerName:         strings.TrimSpace(req.OwnerName),
		Email:             strings.TrimSpace(req.Email),
		Phone:             strings.TrimSpace(req.Phone),
		Address:           strings.TrimSpace(req.Address),
		City:              strings.TrimSpace(req.City),
		State:             strings.TrimSpace(req.State),
		ZipCode:           strings.TrimSpace(req.ZipCode),
		Country:           strings.TrimSpace(req.Country),
		BusinessType:      businessType,
		Members:           members,
		EINNeeded:         intake.YesNo(req.Ein, true),
		BankAccountNeeded: intake.YesNo(req.BankAccount, true),
		AdditionalInfo:    intake.OptionalText(req.AdditionalInfo),
		Status:            StatusPending,
	}, nil
}
