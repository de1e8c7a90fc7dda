package newbill

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/garyjia/billed/internal/application/controller"
	"github.com/garyjia/billed/internal/application/controller/controllertest"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/interfaces/ui"
	"github.com/garyjia/billed/internal/session"
	"github.com/garyjia/billed/internal/view"
)

type fixture struct {
	doc   *ui.Document
	store *controllertest.Store
	nav   *controllertest.Navigator
	nb    *NewBill
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		doc: ui.MustNewDocument(ui.DefaultShell),
		store: &controllertest.Store{Created: entity.Bill{
			Key:      "1234",
			FilePath: entity.StrPtr("public/abc.jpg"),
		}},
		nav: &controllertest.Navigator{},
	}
	require.NoError(t, f.doc.ByID("root").SetInnerHTML(view.MustNew(nil).NewBill(view.Layout{Employee: true, Height: view.NavbarCollapsed})))

	storage := session.NewMemoryStorage()
	require.NoError(t, session.SaveUser(storage, entity.User{Type: entity.UserTypeEmployee, Email: "employee@test.tld"}))

	f.nb = New(controller.Env{
		Document: f.doc,
		Storage:  storage,
		Store:    f.store,
		Navigate: f.nav.Func(),
	})
	return f
}

func (f *fixture) choose(t *testing.T, name string) error {
	t.Helper()
	return f.doc.Dispatch(context.Background(), &ui.Event{
		Type:     ui.EventChange,
		TargetID: FileInput,
		Value:    `C:\fakepath\` + name,
		Files:    []ui.File{{Name: name, ContentType: "image/jpeg", Data: []byte("receipt")}},
	})
}

func (f *fixture) submit() error {
	return f.doc.Dispatch(context.Background(), &ui.Event{Type: ui.EventSubmit, TargetID: FormID})
}

func (f *fixture) fill() {
	f.doc.ByID(ExpenseType).SetValue("Transports")
	f.doc.ByID(ExpenseName).SetValue("Vol Paris Londres")
	f.doc.ByID(DateInput).SetValue("2022-04-01")
	f.doc.ByID(AmountInput).SetValue("348.9")
	f.doc.ByID(VATInput).SetValue("70")
	f.doc.ByID(CommentaryInput).SetValue("séminaire")
}

func TestHandleFileChangeRejectsExtension(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.choose(t, "receipt.pdf"))

	msg := f.doc.ByClass("file-error-message")
	require.NotNil(t, msg)
	assert.Equal(t, FileErrorMessage, msg.Text())
	assert.Empty(t, f.doc.ByID(FileInput).Value())
	assert.Empty(t, f.store.Creates)

	billID, fileURL := f.nb.Uploaded()
	assert.Empty(t, billID)
	assert.Empty(t, fileURL)

	// a second rejection keeps a single message
	require.NoError(t, f.choose(t, "receipt.gif"))
	container := f.doc.ByID(FileInput).Closest("col-half")
	assert.Equal(t, 1, bytes.Count([]byte(container.InnerHTML()), []byte("file-error-message")))
}

func TestHandleFileChangeUploads(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.choose(t, "receipt.pdf"))
	require.NotNil(t, f.doc.ByClass("file-error-message"))

	require.NoError(t, f.choose(t, "receipt.JPG"))
	assert.Nil(t, f.doc.ByClass("file-error-message"))

	require.Len(t, f.store.Creates, 1)
	req := f.store.Creates[0]
	assert.True(t, req.Options.NoContentType)

	mediaType, params, err := mime.ParseMediaType(req.Options.Headers["Content-Type"])
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	form, err := multipart.NewReader(bytes.NewReader(req.Data), params["boundary"]).ReadForm(1 << 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"employee@test.tld"}, form.Value["email"])
	require.Len(t, form.File["file"], 1)
	assert.Equal(t, "receipt.JPG", form.File["file"][0].Filename)

	billID, fileURL := f.nb.Uploaded()
	assert.Equal(t, "1234", billID)
	assert.Equal(t, "http://localhost:5678/public/abc.jpg", fileURL)
}

func TestHandleFileChangeUploadError(t *testing.T) {
	f := newFixture(t)
	f.store.CreateErr = errors.New("Erreur 500")

	err := f.choose(t, "receipt.png")
	assert.EqualError(t, err, "Erreur 500")

	billID, _ := f.nb.Uploaded()
	assert.Empty(t, billID)
}

func TestHandleFormSubmit(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.choose(t, "receipt.jpg"))
	f.fill()

	require.NoError(t, f.submit())

	require.Len(t, f.store.Updates, 1)
	assert.Equal(t, "1234", f.store.Updates[0].Selector)

	sent := f.store.UpdatedBills()[0]
	assert.Equal(t, "employee@test.tld", sent["email"])
	assert.Equal(t, "Transports", sent["type"])
	assert.Equal(t, "Vol Paris Londres", sent["name"])
	assert.Equal(t, float64(348), sent["amount"])
	assert.Equal(t, "2022-04-01", sent["date"])
	assert.Equal(t, "70", sent["vat"])
	assert.Equal(t, float64(DefaultPct), sent["pct"])
	assert.Equal(t, "séminaire", sent["commentary"])
	assert.Equal(t, "http://localhost:5678/public/abc.jpg", sent["fileUrl"])
	assert.Equal(t, "receipt.jpg", sent["fileName"])
	assert.Equal(t, "pending", sent["status"])

	assert.Equal(t, []string{entity.PathBills}, f.nav.Paths())

	billID, fileURL := f.nb.Uploaded()
	assert.Empty(t, billID)
	assert.Empty(t, fileURL)
}

func TestHandleFormSubmitKeepsPct(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.choose(t, "receipt.jpg"))
	f.fill()
	f.doc.ByID(PctInput).SetValue("10")

	require.NoError(t, f.submit())
	require.Len(t, f.store.Updates, 1)
	assert.Equal(t, float64(10), f.store.UpdatedBills()[0]["pct"])
}

func TestHandleFormSubmitWithoutUpload(t *testing.T) {
	f := newFixture(t)
	f.fill()

	require.NoError(t, f.submit())
	assert.Empty(t, f.store.Updates)
	assert.Empty(t, f.nav.Paths())
}

func TestHandleFormSubmitRejectsInvalidForm(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.choose(t, "receipt.jpg"))
	f.fill()
	f.doc.ByID(DateInput).SetValue("")

	require.NoError(t, f.submit())
	assert.Empty(t, f.store.Updates)
	assert.Empty(t, f.nav.Paths())
}

func TestHandleFormSubmitUpdateError(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.choose(t, "receipt.jpg"))
	f.fill()
	f.store.UpdateErr = errors.New("Erreur 404")

	err := f.submit()
	assert.EqualError(t, err, "Erreur 404")
	assert.Empty(t, f.nav.Paths())

	billID, _ := f.nb.Uploaded()
	assert.Equal(t, "1234", billID)
}

func TestUpdateBillWithoutStore(t *testing.T) {
	nb := New(controller.Env{Document: ui.MustNewDocument(ui.DefaultShell)})
	assert.NoError(t, nb.UpdateBill(context.Background(), Form{}))
}

func TestNewLogsMissingElements(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	doc := ui.MustNewDocument(ui.DefaultShell)

	New(controller.Env{Document: doc, Logger: zap.New(core)})

	assert.Equal(t, 2, logs.Len())
	assert.False(t, doc.Bound(ui.EventSubmit, FormID))
	assert.False(t, doc.Bound(ui.EventChange, FileInput))
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"348", 348},
		{"348.9", 348},
		{" 20 ", 20},
		{"", 0},
		{"abc", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseInt(tt.in))
		})
	}
}
