package bills

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/application/controller"
	"github.com/garyjia/billed/internal/application/controller/controllertest"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/format"
	"github.com/garyjia/billed/internal/interfaces/ui"
	"github.com/garyjia/billed/internal/session"
	"github.com/garyjia/billed/internal/view"
)

type mockModal struct {
	mu    sync.Mutex
	shown []string
}

func (m *mockModal) Show(modal *ui.Element) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shown = append(m.shown, modal.ID())
}

func (m *mockModal) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.shown)
}

func newEnv(t *testing.T, store *controllertest.Store, rows []format.BillRow) (controller.Env, *controllertest.Navigator, *mockModal) {
	t.Helper()
	doc := ui.MustNewDocument(ui.DefaultShell)
	views := view.MustNew(nil)
	require.NoError(t, doc.ByID("root").SetInnerHTML(views.Bills(view.Layout{Employee: true, Height: view.NavbarCollapsed}, rows)))

	nav := &controllertest.Navigator{}
	modal := &mockModal{}
	env := controller.Env{
		Document: doc,
		Storage:  session.NewMemoryStorage(),
		Views:    views,
		Navigate: nav.Func(),
		Modal:    modal,
	}
	if store != nil {
		env.Store = store
	}
	return env, nav, modal
}

func TestGetBills(t *testing.T) {
	store := &controllertest.Store{BillList: []entity.Bill{
		{ID: "2", Status: entity.StatusAccepted, Date: "2003-03-03", Amount: 200, Type: "Restaurants"},
		{ID: "1", Status: entity.StatusPending, Date: "2004-04-04", Amount: 100, Type: "Transports"},
	}}
	env, _, _ := newEnv(t, store, nil)

	rows, err := New(env).GetBills(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "4 Avr. 04", rows[0].Date)
	assert.Equal(t, "En attente", rows[0].Status)
	assert.Equal(t, "3 Mar. 03", rows[1].Date)
	assert.Equal(t, "Accepté", rows[1].Status)
}

func TestGetBillsCorruptedDate(t *testing.T) {
	store := &controllertest.Store{BillList: []entity.Bill{
		{ID: "1", Status: entity.StatusPending, Date: "invalid-date", Amount: 100},
	}}
	env, _, _ := newEnv(t, store, nil)

	rows, err := New(env).GetBills(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "invalid-date", rows[0].Date)
	assert.Equal(t, "En attente", rows[0].Status)
}

func TestGetBillsEdgeCases(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		env, _, _ := newEnv(t, &controllertest.Store{}, nil)
		rows, err := New(env).GetBills(context.Background())
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("no store", func(t *testing.T) {
		env, _, _ := newEnv(t, nil, nil)
		rows, err := New(env).GetBills(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		env, _, _ := newEnv(t, &controllertest.Store{ListErr: errors.New("404 Not Found")}, nil)
		_, err := New(env).GetBills(context.Background())
		assert.EqualError(t, err, "404 Not Found")
	})
}

func TestClickNewBill(t *testing.T) {
	env, nav, _ := newEnv(t, nil, nil)
	New(env)

	require.NoError(t, env.Document.Click(context.Background(), ButtonNewBill))
	assert.Equal(t, []string{entity.PathNewBill}, nav.Paths())
}

func TestClickIconEye(t *testing.T) {
	rows := format.FormatBillRows([]entity.Bill{
		{ID: "ok", Date: "2004-04-04", FileURL: entity.StrPtr("https://test.storage.tld/receipt.jpg")},
		{ID: "bad", Date: "2003-03-03", FileURL: entity.StrPtr("null")},
	})

	t.Run("valid url opens the modal", func(t *testing.T) {
		env, _, modal := newEnv(t, nil, rows)
		env.Document.ByID(ModalID).SetAttr("data-width", "1000")
		New(env)

		require.NoError(t, env.Document.Click(context.Background(), "eye-ok"))

		m := env.Document.ByID(ModalID)
		assert.Equal(t, "false", m.Attr("aria-hidden"))
		img := m.FindClass("modal-body").Find("img")
		require.NotNil(t, img)
		assert.Equal(t, "https://test.storage.tld/receipt.jpg", img.Attr("src"))
		assert.Equal(t, "500", img.Attr("width"))
		assert.Equal(t, 1, modal.Count())
	})

	t.Run("invalid url is ignored", func(t *testing.T) {
		env, _, modal := newEnv(t, nil, rows)
		New(env)

		require.NoError(t, env.Document.Click(context.Background(), "eye-bad"))

		assert.Equal(t, 0, modal.Count())
		assert.Nil(t, env.Document.ByID(ModalID).FindClass("modal-body").Find("img"))
	})
}

func TestDisconnect(t *testing.T) {
	env, nav, _ := newEnv(t, nil, nil)
	require.NoError(t, session.SaveUser(env.Storage, entity.User{Type: entity.UserTypeEmployee, Email: "e@e.tld"}))
	New(env)

	require.NoError(t, env.Document.Click(context.Background(), "layout-disconnect"))
	assert.Nil(t, session.CurrentUser(env.Storage))
	assert.Equal(t, []string{entity.PathLogin}, nav.Paths())
}
