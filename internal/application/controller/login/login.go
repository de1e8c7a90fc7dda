// Package login handles the employee and administrator sign-in forms.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/controller"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/interfaces/ui"
	"github.com/garyjia/billed/internal/session"
	"github.com/garyjia/billed/pkg/utils"
)

// Element ids of the login page
const (
	FormEmployee          = "form-employee"
	FormAdmin             = "form-admin"
	EmployeeEmailInput    = "employee-email-input"
	EmployeePasswordInput = "employee-password-input"
	AdminEmailInput       = "admin-email-input"
	AdminPasswordInput    = "admin-password-input"

	// BodyClass marks the body while the login page is shown
	BodyClass = "login-page"
)

// ErrFormNotFound is returned when the login forms are not rendered
var ErrFormNotFound = errors.New("login form not found")

// Credentials is the body of a login call
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login is the login page controller
type Login struct {
	env controller.Env
}

// New binds both login forms
func New(env controller.Env) (*Login, error) {
	l := &Login{env: env}
	if env.Document.ByID(FormEmployee) == nil || env.Document.ByID(FormAdmin) == nil {
		env.Log().Error("Login forms not found when initializing Login")
		return nil, ErrFormNotFound
	}
	env.Document.On(ui.EventSubmit, FormEmployee, l.HandleSubmitEmployee)
	env.Document.On(ui.EventSubmit, FormAdmin, l.HandleSubmitAdmin)
	return l, nil
}

// HandleSubmitEmployee signs an employee in and opens the bills list
func (l *Login) HandleSubmitEmployee(ctx context.Context, ev *ui.Event) error {
	ev.PreventDefault()
	user := entity.User{
		Type:     entity.UserTypeEmployee,
		Email:    l.value(EmployeeEmailInput),
		Password: l.value(EmployeePasswordInput),
		Status:   "connected",
	}
	return l.submit(ctx, user, entity.PathBills)
}

// HandleSubmitAdmin signs an administrator in and opens the dashboard
func (l *Login) HandleSubmitAdmin(ctx context.Context, ev *ui.Event) error {
	ev.PreventDefault()
	user := entity.User{
		Type:     entity.UserTypeAdmin,
		Email:    l.value(AdminEmailInput),
		Password: l.value(AdminPasswordInput),
		Status:   "connected",
	}
	return l.submit(ctx, user, entity.PathDashboard)
}

func (l *Login) submit(ctx context.Context, user entity.User, next string) error {
	if err := utils.ValidateStruct(Credentials{Email: user.Email, Password: user.Password}); err != nil {
		l.env.Log().Warn("Rejected login form", zap.String("type", string(user.Type)), zap.Error(err))
		return nil
	}

	if err := session.SaveUser(l.env.Storage, user); err != nil {
		return err
	}
	if err := l.env.Storage.RemoveItem(session.KeyJWT); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}

	if err := l.Login(ctx, user); err != nil {
		l.env.Log().Error("Login failed", zap.String("email", user.Email), zap.Error(err))
		return err
	}

	l.env.Go(ctx, next)
	if body := l.env.Document.Body(); body != nil {
		body.RemoveClass(BodyClass)
	}
	return nil
}

// Login exchanges the user credentials for a token and stores it.
// Without a store it does nothing.
func (l *Login) Login(ctx context.Context, user entity.User) error {
	if l.env.Store == nil {
		return nil
	}
	creds, err := json.Marshal(Credentials{Email: user.Email, Password: user.Password})
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	res, err := l.env.Store.Login(ctx, creds)
	if err != nil {
		return err
	}
	return l.env.Storage.SetItem(session.KeyJWT, res.JWT)
}

// CreateUser registers an account for user and then logs it in
func (l *Login) CreateUser(ctx context.Context, user entity.User) error {
	if l.env.Store == nil {
		return nil
	}
	data, err := json.Marshal(map[string]string{
		"type":     string(user.Type),
		"name":     strings.SplitN(user.Email, "@", 2)[0],
		"email":    user.Email,
		"password": user.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if _, err := l.env.Store.Users().Create(ctx, port.CreateRequest{Data: data}); err != nil {
		return err
	}
	l.env.Log().Info("User created", zap.String("email", user.Email))
	return l.Login(ctx, user)
}

func (l *Login) value(id string) string {
	if el := l.env.Document.ByID(id); el != nil {
		return el.Value()
	}
	return ""
}
