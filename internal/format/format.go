// Package format turns raw bills into display values.
package format

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/workflow"
)

// French abbreviated month names as rendered by the "fr" locale
var frenchMonths = [...]string{
	"janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc.",
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// FormatDate renders an ISO date as "D Mon. YY" ("2004-04-04" -> "4 Avr. 04").
// Input that is not a date is returned unchanged and must be treated as
// opaque display text.
func FormatDate(dateStr string) string {
	t, err := ParseDate(dateStr)
	if err != nil {
		return dateStr
	}

	// a Caser is stateful, so one per call
	month := []rune(cases.Title(language.French).String(frenchMonths[t.Month()-1]))
	if len(month) > 3 {
		month = month[:3]
	}
	return fmt.Sprintf("%d %s. %02d", t.Day(), string(month), t.Year()%100)
}

// ParseDate parses the date formats bills are stored with
func ParseDate(dateStr string) (time.Time, error) {
	s := strings.TrimSpace(dateStr)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", dateStr)
}

// FormatStatus returns the label shown for a review status
func FormatStatus(status entity.Status) string {
	switch status {
	case entity.StatusPending:
		return "En attente"
	case entity.StatusAccepted:
		return "Accepté"
	case entity.StatusRefused:
		return "Refused"
	default:
		return ""
	}
}

var invalidSegment = regexp.MustCompile(`^(null|undefined)$|/(null|undefined)`)

// ValidateFileURL reports whether value is unusable as a file reference:
// absent, blank, the literal "null"/"undefined", or containing such a path
// segment. It returns true for INVALID values.
func ValidateFileURL(value *string) bool {
	if value == nil {
		return true
	}
	return IsInvalidRef(*value)
}

// IsInvalidRef is ValidateFileURL for values read from markup attributes
func IsInvalidRef(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed == "" || invalidSegment.MatchString(trimmed)
}

// DisplayBill is a bill with the derived fields views render
type DisplayBill struct {
	entity.Bill
	HasValidFile        bool
	DisplayFileName     string
	DisplayFileURL      string
	DisplayCommentAdmin string
	// CanAccept and CanRefuse are the decisions still open on the bill
	CanAccept bool
	CanRefuse bool
	Reviewed  bool
}

// FormatBillForDisplay derives the display fields of a bill
func FormatBillForDisplay(bill entity.Bill) DisplayBill {
	display := DisplayBill{
		Bill:                bill,
		HasValidFile:        !ValidateFileURL(bill.FileURL),
		DisplayFileName:     validOrEmpty(bill.FileName),
		DisplayFileURL:      validOrEmpty(bill.FileURL),
		DisplayCommentAdmin: validOrEmpty(bill.CommentAdmin),
		Reviewed:            workflow.IsReviewed(bill.Status),
	}
	for _, decision := range workflow.Decisions(bill.Status) {
		switch decision {
		case entity.StatusAccepted:
			display.CanAccept = true
		case entity.StatusRefused:
			display.CanRefuse = true
		}
	}
	return display
}

// Reviewable reports whether the review controls are shown
func (b DisplayBill) Reviewable() bool {
	return b.CanAccept || b.CanRefuse
}

// FileName prefers the display value and falls back to the raw value
func (b DisplayBill) FileName() string {
	if b.DisplayFileName != "" {
		return b.DisplayFileName
	}
	return entity.StrVal(b.Bill.FileName)
}

// FileURL prefers the display value and falls back to the raw value
func (b DisplayBill) FileURL() string {
	if b.DisplayFileURL != "" {
		return b.DisplayFileURL
	}
	return entity.StrVal(b.Bill.FileURL)
}

// CommentAdmin prefers the display value and falls back to the raw value
func (b DisplayBill) CommentAdmin() string {
	if b.DisplayCommentAdmin != "" {
		return b.DisplayCommentAdmin
	}
	return entity.StrVal(b.Bill.CommentAdmin)
}

// FormattedDate is the bill date as rendered in views
func (b DisplayBill) FormattedDate() string {
	return FormatDate(b.Date)
}

func validOrEmpty(value *string) string {
	if ValidateFileURL(value) {
		return ""
	}
	return *value
}
