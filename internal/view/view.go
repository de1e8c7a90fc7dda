// Package view renders the screens of the client as HTML fragments.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/format"
)

//go:embed templates/*.html
var templateFS embed.FS

// Navbar heights, in vh
const (
	NavbarCollapsed = 120
	NavbarExpanded  = 150
)

// ExpenseTypes are the categories offered on the new bill form
var ExpenseTypes = []string{
	"Transports",
	"Restaurants et bars",
	"Hôtel et logement",
	"Services en ligne",
	"IT et électronique",
	"Equipement et matériel",
	"Fournitures de bureau",
}

// Layout is the vertical navbar shown next to authenticated screens
type Layout struct {
	Employee bool
	Height   int
}

// LayoutFor returns the navbar for user
func LayoutFor(user *entity.User) Layout {
	return Layout{
		Employee: user != nil && user.Type == entity.UserTypeEmployee,
		Height:   NavbarCollapsed,
	}
}

// Section is one status column header of the dashboard
type Section struct {
	Index int
	Title string
}

// Sections lists the dashboard columns in display order
var Sections = []Section{
	{Index: 1, Title: "En attente"},
	{Index: 2, Title: "Validé"},
	{Index: 3, Title: "Refusé"},
}

// Renderer executes the embedded templates
type Renderer struct {
	tmpl   *template.Template
	logger *zap.Logger
}

// New parses the embedded templates
func New(logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl, err := template.New("billed").Funcs(template.FuncMap{
		"formatDate": format.FormatDate,
		"ownerName":  OwnerName,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, logger: logger}, nil
}

// MustNew is New for process startup and tests
func MustNew(logger *zap.Logger) *Renderer {
	r, err := New(logger)
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes the named template
func (r *Renderer) Render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// render logs execution failures and returns an empty fragment
func (r *Renderer) render(name string, data interface{}) string {
	out, err := r.Render(name, data)
	if err != nil {
		r.logger.Error("Template execution failed", zap.String("template", name), zap.Error(err))
		return ""
	}
	return out
}

func (r *Renderer) Login() string {
	return r.render("login", nil)
}

func (r *Renderer) Loading(layout Layout) string {
	return r.render("loading", struct{ Layout Layout }{layout})
}

// Error renders the error page carrying message
func (r *Renderer) Error(layout Layout, message string) string {
	return r.render("error", struct {
		Layout  Layout
		Message string
	}{layout, message})
}

func (r *Renderer) Bills(layout Layout, rows []format.BillRow) string {
	return r.render("bills", struct {
		Layout Layout
		Rows   []format.BillRow
	}{layout, rows})
}

func (r *Renderer) NewBill(layout Layout) string {
	return r.render("newbill", struct {
		Layout       Layout
		ExpenseTypes []string
	}{layout, ExpenseTypes})
}

// Dashboard renders the three collapsed status sections
func (r *Renderer) Dashboard(layout Layout) string {
	return r.render("dashboard", struct {
		Layout   Layout
		Sections []Section
	}{layout, Sections})
}

// Cards renders the bill cards of one dashboard section
func (r *Renderer) Cards(bills []entity.Bill) string {
	if len(bills) == 0 {
		return ""
	}
	return r.render("cards", bills)
}

// DashboardForm renders the review form of one bill. Accept and refuse
// controls are only rendered for pending bills.
func (r *Renderer) DashboardForm(bill format.DisplayBill) string {
	return r.render("dashboard-form", bill)
}

// Placeholder is the right panel shown when no bill is expanded
func (r *Renderer) Placeholder() string {
	return r.render("placeholder", nil)
}

// Proof renders the receipt image shown in a modal body
func (r *Renderer) Proof(width int, url string) string {
	return r.render("proof", struct {
		Width int
		URL   string
	}{width, url})
}

// OwnerName derives "first last" from a "first.last@domain" email
func OwnerName(email string) string {
	local := strings.SplitN(email, "@", 2)[0]
	if !strings.Contains(local, ".") {
		return " " + local
	}
	parts := strings.Split(local, ".")
	return parts[0] + " " + parts[1]
}
