package format

import (
	"sort"

	"github.com/garyjia/billed/internal/domain/entity"
)

// BillRow is one line of the employee bills table
type BillRow struct {
	ID           string
	Type         string
	Name         string
	RawDate      string
	Date         string
	Amount       float64
	Status       string
	FileURL      string
	HasValidFile bool
}

// FormatBillRow formats the date and status of a bill for the bills table.
// An unparseable date is kept raw.
func FormatBillRow(bill entity.Bill) BillRow {
	date := bill.Date
	if _, err := ParseDate(bill.Date); err == nil {
		date = FormatDate(bill.Date)
	}
	return BillRow{
		ID:           bill.ID,
		Type:         bill.Type,
		Name:         bill.Name,
		RawDate:      bill.Date,
		Date:         date,
		Amount:       bill.Amount,
		Status:       FormatStatus(bill.Status),
		FileURL:      entity.StrVal(bill.FileURL),
		HasValidFile: !ValidateFileURL(bill.FileURL),
	}
}

// FormatBillRows formats bills, keeping their order
func FormatBillRows(bills []entity.Bill) []BillRow {
	rows := make([]BillRow, 0, len(bills))
	for _, b := range bills {
		rows = append(rows, FormatBillRow(b))
	}
	return rows
}

// SortNewestFirst orders rows by raw date, most recent first.
// Rows with unparseable dates go last, in their original order.
func SortNewestFirst(rows []BillRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, erri := ParseDate(rows[i].RawDate)
		tj, errj := ParseDate(rows[j].RawDate)
		switch {
		case erri != nil:
			return false
		case errj != nil:
			return true
		default:
			return ti.After(tj)
		}
	})
}
