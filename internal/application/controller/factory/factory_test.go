package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/application/controller"
	"github.com/garyjia/billed/internal/application/controller/dashboard"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/interfaces/ui"
	"github.com/garyjia/billed/internal/session"
	"github.com/garyjia/billed/internal/view"
)

func newEnv(t *testing.T, markup string) controller.Env {
	t.Helper()
	doc := ui.MustNewDocument(ui.DefaultShell)
	require.NoError(t, doc.ByID("root").SetInnerHTML(markup))
	return controller.Env{
		Document: doc,
		Storage:  session.NewMemoryStorage(),
		Views:    view.MustNew(nil),
	}
}

func TestControllers(t *testing.T) {
	views := view.MustNew(nil)
	f := New()

	t.Run("login requires its forms", func(t *testing.T) {
		assert.Error(t, f.Login(newEnv(t, "")))
		assert.NoError(t, f.Login(newEnv(t, views.Login())))
	})

	t.Run("bills without store", func(t *testing.T) {
		rows, err := f.Bills(newEnv(t, "")).GetBills(context.Background())
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("new bill binds the form", func(t *testing.T) {
		env := newEnv(t, views.NewBill(view.Layout{Employee: true, Height: view.NavbarCollapsed}))
		require.NoError(t, f.NewBill(env))
		assert.True(t, env.Document.Bound(ui.EventSubmit, "form-new-bill"))
	})

	t.Run("dashboard keeps the preserved section", func(t *testing.T) {
		env := newEnv(t, views.Dashboard(view.Layout{Height: view.NavbarCollapsed}))
		d := f.Dashboard(env, []entity.Bill{{ID: "1", Status: entity.StatusPending}}, 2)
		defer d.Close()

		assert.IsType(t, &dashboard.Dashboard{}, d)
		assert.Equal(t, 2, d.PreservedSection())

		empty := f.Dashboard(env, nil, 0)
		defer empty.Close()
		assert.Equal(t, 0, empty.PreservedSection())
	})
}
