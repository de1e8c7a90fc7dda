// Package logout wires the disconnect button of the navbar.
package logout

import (
	"context"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/controller"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/interfaces/ui"
)

// ButtonID is the navbar disconnect control
const ButtonID = "layout-disconnect"

// Logout clears the session and returns to the login page
type Logout struct {
	env controller.Env
}

// New binds the disconnect button
func New(env controller.Env) *Logout {
	l := &Logout{env: env}
	env.Document.On(ui.EventClick, ButtonID, l.handleClick)
	return l
}

func (l *Logout) handleClick(ctx context.Context, ev *ui.Event) error {
	return l.Logout(ctx)
}

// Logout clears persisted storage and navigates to the login route
func (l *Logout) Logout(ctx context.Context) error {
	if l.env.Storage != nil {
		if err := l.env.Storage.Clear(); err != nil {
			l.env.Log().Error("Failed to clear session storage", zap.Error(err))
			return err
		}
	}
	l.env.Go(ctx, entity.PathLogin)
	return nil
}
