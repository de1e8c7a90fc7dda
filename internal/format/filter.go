package format

import (
	"github.com/garyjia/billed/internal/domain/entity"
)

// SeedUsers are the identities created by the backend seed. Their bills
// never appear in review lists.
var SeedUsers = []string{
	"employee@test.tld",
	"admin@test.tld",
	"employee@company.tld",
	"admin@company.tld",
}

// Viewer is the identity bills are filtered for
type Viewer struct {
	Email string
	Admin bool
}

// ViewerFromUser builds a viewer from the session user; nil yields the
// zero viewer, which sees nothing.
func ViewerFromUser(user *entity.User) Viewer {
	if user == nil {
		return Viewer{}
	}
	return Viewer{Email: user.Email, Admin: user.IsAdmin()}
}

// ShouldIncludeBill reports whether a bill may be shown to the viewer:
// seed identities are always hidden, and employees never see their own bills.
func ShouldIncludeBill(bill entity.Bill, viewerEmail string, isAdmin bool) bool {
	for _, seed := range SeedUsers {
		if bill.Email == seed {
			return false
		}
	}
	if !isAdmin && bill.Email == viewerEmail {
		return false
	}
	return true
}

// FilteredBills returns the bills with the given status that the viewer
// may see. A viewer without an email sees nothing.
func FilteredBills(bills []entity.Bill, status entity.Status, viewer Viewer) []entity.Bill {
	if len(bills) == 0 || viewer.Email == "" {
		return []entity.Bill{}
	}

	out := make([]entity.Bill, 0, len(bills))
	for _, b := range bills {
		if b.Status == status && ShouldIncludeBill(b, viewer.Email, viewer.Admin) {
			out = append(out, b)
		}
	}
	return out
}

// StatusForSection maps a dashboard section index to its status
func StatusForSection(index int) (entity.Status, bool) {
	switch index {
	case 1:
		return entity.StatusPending, true
	case 2:
		return entity.StatusAccepted, true
	case 3:
		return entity.StatusRefused, true
	default:
		return "", false
	}
}
