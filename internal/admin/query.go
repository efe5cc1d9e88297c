// Package admin implements the operator-side queries over applications and
// contact submissions: free-text search, status filtering and counts.
package admin

import (
	"strings"

	"github.com/wolfman30/llc-formation-platform/internal/applications"
	"github.com/wolfman30/llc-formation-platform/internal/contacts"
)

// StatusAll disables the status filter.
const StatusAll = "all"

// Stats are the dashboard counters. They are always computed from the
// unfiltered lists.
type Stats struct {
	Total         int `json:"total"`
	Pending       int `json:"pending"`
	Completed     int `json:"completed"`
	TotalContacts int `json:"totalContacts"`
}

// FilterApplications keeps applications whose company name, owner name or
// e-mail contains search (case-insensitive) and whose status equals status.
// An empty search matches everything; "all" or an empty status disables
// the status check. Input order is preserved.
func FilterApplications(apps []*applications.Application, search, status string) []*applications.Application {
	needle := strings.ToLower(search)
	out := make([]*applications.Application, 0, len(apps))
	for _, app := range apps {
		if app == nil {
			continue
		}
		if !containsAny(needle, app.CompanyName, app.OwnerName, app.Email) {
			continue
		}
		if status != "" && status != StatusAll && string(app.Status) != status {
			continue
		}
		out = append(out, app)
	}
	return out
}

// FilterContacts keeps submissions whose name, e-mail or message contains
// search (case-insensitive).
func FilterContacts(subs []*contacts.Submission, search string) []*contacts.Submission {
	needle := strings.ToLower(search)
	out := make([]*contacts.Submission, 0, len(subs))
	for _, s := range subs {
		if s == nil {
			continue
		}
		if containsAny(needle, s.Name, s.Email, s.Message) {
			out = append(out, s)
		}
	}
	return out
}

// ComputeStats counts applications by status and contacts in total.
func ComputeStats(apps []*applications.Application, subs []*contacts.Submission) Stats {
	st := Stats{Total: len(apps), TotalContacts: len(subs)}
	for _, app := range apps {
		if app == nil {
			continue
		}
		switch app.Status {
		case applications.StatusPending:
			st.Pending++
		case applications.StatusCompleted:
			st.Completed++
		}
	}
	return st
}

func containsAny(needle string, fields ...string) bool {
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
