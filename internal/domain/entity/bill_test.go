package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		status Status
		valid  bool
	}{
		{StatusPending, true},
		{StatusAccepted, true},
		{StatusRefused, true},
		{Status("archived"), false},
		{Status(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.IsValid())
		})
	}
}

func TestNewReviewPayload(t *testing.T) {
	bill := Bill{
		ID:         "47qAXb6fIm2zOKkLzMro",
		Status:     StatusPending,
		Type:       "Hôtel et logement",
		Name:       "encore",
		Date:       "2004-04-04",
		Amount:     400,
		VAT:        "80",
		Pct:        20,
		Commentary: "séminaire billed",
		Email:      "a@a",
		FileURL:    StrPtr("https://test.storage.tld/f.jpg"),
		FileName:   StrPtr("f.jpg"),
	}

	payload := NewReviewPayload(bill, StatusAccepted, "ok")

	assert.Equal(t, bill.ID, payload.ID)
	assert.Equal(t, StatusAccepted, payload.Status)
	assert.Equal(t, "ok", payload.CommentAdmin)
	assert.Equal(t, bill.Amount, payload.Amount)

	back := payload.Bill()
	assert.Equal(t, bill.ID, back.ID)
	assert.Nil(t, back.FileURL)
	assert.Equal(t, "ok", StrVal(back.CommentAdmin))
}

func TestReplaceBill(t *testing.T) {
	bills := []Bill{{ID: "1", Status: StatusPending}, {ID: "2", Status: StatusPending}}

	out := ReplaceBill(bills, Bill{ID: "2", Status: StatusRefused})

	assert.Equal(t, StatusPending, out[0].Status)
	assert.Equal(t, StatusRefused, out[1].Status)
	assert.Equal(t, StatusPending, bills[1].Status, "input must not be mutated")

	_, ok := FindBill(out, "3")
	assert.False(t, ok)
}

func TestRouteForPath(t *testing.T) {
	assert.Equal(t, RouteLogin, RouteForPath("/"))
	assert.Equal(t, RouteBills, RouteForPath("#employee/bills"))
	assert.Equal(t, RouteNewBill, RouteForPath("#employee/bill/new"))
	assert.Equal(t, RouteDashboard, RouteForPath("#admin/dashboard"))
	assert.Equal(t, RouteNone, RouteForPath("#unknown/route"))
	assert.Equal(t, "#admin/dashboard", RouteDashboard.Path())
}
