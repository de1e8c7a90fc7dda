package entity

// Status is the review status of a bill
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is one of the known review statuses
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRefused:
		return true
	default:
		return false
	}
}

// Bill represents an expense report submitted by an employee.
// Pointer fields are optional on the wire and may be null.
type Bill struct {
	ID           string  `json:"id"`
	Key          string  `json:"key,omitempty"`
	Status       Status  `json:"status"`
	Type         string  `json:"type"`
	Name         string  `json:"name"`
	Date         string  `json:"date"`
	Amount       float64 `json:"amount"`
	VAT          string  `json:"vat"`
	Pct          float64 `json:"pct"`
	Commentary   string  `json:"commentary"`
	CommentAdmin *string `json:"commentAdmin,omitempty"`
	Email        string  `json:"email"`
	FileURL      *string `json:"fileUrl,omitempty"`
	FileName     *string `json:"fileName,omitempty"`
	FilePath     *string `json:"filePath,omitempty"`
}

// StrPtr returns a pointer to s, for the optional bill fields
func StrPtr(s string) *string {
	return &s
}

// StrVal dereferences an optional field, returning "" for nil
func StrVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ReviewPayload is the sanitized bill body sent when an administrator
// accepts or refuses a bill. Only these fields ever leave the dashboard.
type ReviewPayload struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Email        string  `json:"email"`
	Date         string  `json:"date"`
	VAT          string  `json:"vat"`
	Pct          float64 `json:"pct"`
	Commentary   string  `json:"commentary"`
	Amount       float64 `json:"amount"`
	Status       Status  `json:"status"`
	CommentAdmin string  `json:"commentAdmin"`
}

// NewReviewPayload builds the review payload for bill with the given decision
func NewReviewPayload(bill Bill, status Status, commentAdmin string) ReviewPayload {
	return ReviewPayload{
		ID:           bill.ID,
		Name:         bill.Name,
		Type:         bill.Type,
		Email:        bill.Email,
		Date:         bill.Date,
		VAT:          bill.VAT,
		Pct:          bill.Pct,
		Commentary:   bill.Commentary,
		Amount:       bill.Amount,
		Status:       status,
		CommentAdmin: commentAdmin,
	}
}

// Bill converts the payload back into the in-memory bill representation.
// File references are not part of the payload and are dropped.
func (p ReviewPayload) Bill() Bill {
	return Bill{
		ID:           p.ID,
		Status:       p.Status,
		Type:         p.Type,
		Name:         p.Name,
		Date:         p.Date,
		Amount:       p.Amount,
		VAT:          p.VAT,
		Pct:          p.Pct,
		Commentary:   p.Commentary,
		CommentAdmin: StrPtr(p.CommentAdmin),
		Email:        p.Email,
	}
}

// ReplaceBill returns a copy of bills where the bill with updated.ID is
// replaced. Bills with other ids are kept as is.
func ReplaceBill(bills []Bill, updated Bill) []Bill {
	out := make([]Bill, len(bills))
	for i, b := range bills {
		if b.ID == updated.ID {
			out[i] = updated
			continue
		}
		out[i] = b
	}
	return out
}

// FindBill returns the bill with the given id
func FindBill(bills []Bill, id string) (Bill, bool) {
	for _, b := range bills {
		if b.ID == id {
			return b, true
		}
	}
	return Bill{}, false
}
