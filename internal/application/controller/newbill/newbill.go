// Package newbill is the controller of the expense submission form.
package newbill

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/controller"
	"github.com/garyjia/billed/internal/application/controller/logout"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/interfaces/ui"
	"github.com/garyjia/billed/internal/session"
	"github.com/garyjia/billed/pkg/utils"
)

// Element ids of the new bill form
const (
	FormID          = "form-new-bill"
	FileInput       = "file"
	ExpenseType     = "expense-type"
	ExpenseName     = "expense-name"
	DateInput       = "datepicker"
	AmountInput     = "amount"
	VATInput        = "vat"
	PctInput        = "pct"
	CommentaryInput = "commentary"
)

// FileErrorMessage is shown under the file input for disallowed extensions
const FileErrorMessage = "Les fichiers autorisés sont: jpg, jpeg ou png"

// DefaultPct applies when the pct field is empty or zero
const DefaultPct = 20

var allowedExtensions = map[string]bool{"jpg": true, "jpeg": true, "png": true}

// ErrMissingUpload is returned by Submit before a receipt was uploaded
var ErrMissingUpload = errors.New("cannot submit bill: missing file upload")

// Form is the bill body sent on submit
type Form struct {
	Email      string        `json:"email" validate:"required"`
	Type       string        `json:"type" validate:"required"`
	Name       string        `json:"name"`
	Amount     int           `json:"amount" validate:"gte=0"`
	Date       string        `json:"date" validate:"required"`
	VAT        string        `json:"vat"`
	Pct        int           `json:"pct" validate:"gte=0,lte=100"`
	Commentary string        `json:"commentary"`
	FileURL    string        `json:"fileUrl" validate:"required,url"`
	FileName   string        `json:"fileName" validate:"required"`
	Status     entity.Status `json:"status"`
}

// upload is the receipt accepted by the backend for the bill being written
type upload struct {
	billID   string
	fileURL  string
	fileName string
	filePath string
}

// NewBill is the new bill form controller
type NewBill struct {
	env  controller.Env
	user *entity.User

	mu     sync.Mutex
	upload upload
}

// New binds the form and the file input. Missing elements are logged and
// leave the matching feature unbound.
func New(env controller.Env) *NewBill {
	nb := &NewBill{env: env, user: session.CurrentUser(env.Storage)}

	if env.Document.ByID(FormID) != nil {
		env.Document.On(ui.EventSubmit, FormID, nb.HandleFormSubmit)
	} else {
		env.Log().Error("Form not found when initializing NewBill")
	}
	if env.Document.ByID(FileInput) != nil {
		env.Document.On(ui.EventChange, FileInput, nb.HandleFileChange)
	} else {
		env.Log().Error("File input not found when initializing NewBill")
	}

	logout.New(env)
	return nb
}

// HandleFileChange validates the chosen receipt and uploads it. A
// disallowed extension is reported inline next to the input.
func (nb *NewBill) HandleFileChange(ctx context.Context, ev *ui.Event) error {
	ev.PreventDefault()

	if len(ev.Files) == 0 {
		nb.reset()
		return nil
	}
	file := ev.Files[0]

	raw := ev.Value
	if raw == "" {
		raw = file.Name
	}
	parts := strings.Split(raw, `\`)
	fileName := parts[len(parts)-1]
	ext := strings.ToLower(fileName[strings.LastIndex(fileName, ".")+1:])

	input := nb.env.Document.ByID(FileInput)
	var container, existing *ui.Element
	if input != nil {
		container = input.Closest("col-half")
	}
	if container != nil {
		existing = container.FindClass("file-error-message")
	}

	if !allowedExtensions[ext] {
		if existing == nil && container != nil {
			if err := container.AppendHTML(`<small class="file-error-message">` + FileErrorMessage + `</small>`); err != nil {
				nb.env.Log().Error("Failed to show file error", zap.Error(err))
			}
		}
		if input != nil {
			input.SetValue("")
		}
		nb.reset()
		return nil
	}
	if existing != nil {
		existing.Remove()
	}

	email := nb.email()
	if email == "" {
		nb.env.Log().Error("User email not found")
		return nil
	}
	if nb.env.Store == nil {
		nb.env.Log().Error("No store to upload the receipt to")
		return nil
	}

	body, contentType, err := multipartBody(file, fileName, email)
	if err != nil {
		return err
	}
	bill, err := nb.env.Store.Bills().Create(ctx, port.CreateRequest{
		Data: body,
		Options: port.RequestOptions{
			NoContentType: true,
			Headers:       map[string]string{"Content-Type": contentType},
		},
	})
	if err != nil {
		nb.env.Log().Error("Receipt upload failed", zap.String("file", fileName), zap.Error(err))
		return err
	}

	filePath := entity.StrVal(bill.FilePath)
	nb.mu.Lock()
	nb.upload = upload{
		billID:   bill.Key,
		filePath: filePath,
		fileURL:  strings.TrimRight(nb.env.Store.BaseURL(), "/") + "/" + filePath,
		fileName: fileName,
	}
	nb.mu.Unlock()

	nb.env.Log().Info("Bill created", zap.String("key", bill.Key), zap.String("file", fileName))
	return nil
}

// HandleFormSubmit sends the form fields for the uploaded bill and returns
// to the bills list
func (nb *NewBill) HandleFormSubmit(ctx context.Context, ev *ui.Event) error {
	ev.PreventDefault()

	nb.mu.Lock()
	up := nb.upload
	nb.mu.Unlock()

	if up.billID == "" || up.fileURL == "" {
		nb.env.Log().Error("Cannot submit bill: missing file upload", zap.String("bill_id", up.billID))
		return nil
	}

	email := nb.email()
	if email == "" {
		nb.env.Log().Error("User email not found")
		return nil
	}

	form := Form{
		Email:      email,
		Type:       nb.value(ExpenseType),
		Name:       nb.value(ExpenseName),
		Amount:     parseInt(nb.value(AmountInput)),
		Date:       nb.value(DateInput),
		VAT:        nb.value(VATInput),
		Pct:        parseInt(nb.value(PctInput)),
		Commentary: nb.value(CommentaryInput),
		FileURL:    up.fileURL,
		FileName:   up.fileName,
		Status:     entity.StatusPending,
	}
	if form.Pct == 0 {
		form.Pct = DefaultPct
	}

	if err := utils.ValidateStruct(form); err != nil {
		nb.env.Log().Warn("Rejected new bill form", zap.Error(err))
		return nil
	}
	return nb.UpdateBill(ctx, form)
}

// UpdateBill writes form onto the uploaded bill. Without a store it does nothing.
func (nb *NewBill) UpdateBill(ctx context.Context, form Form) error {
	if nb.env.Store == nil {
		return nil
	}

	nb.mu.Lock()
	billID := nb.upload.billID
	nb.mu.Unlock()
	if billID == "" {
		return ErrMissingUpload
	}

	data, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("failed to encode bill: %w", err)
	}
	if _, err := nb.env.Store.Bills().Update(ctx, port.UpdateRequest{Data: data, Selector: billID}); err != nil {
		nb.env.Log().Error("Error updating bill", zap.String("bill_id", billID), zap.Error(err))
		return err
	}

	nb.reset()
	nb.env.Go(ctx, entity.PathBills)
	return nil
}

// Uploaded reports the key and url of the uploaded receipt
func (nb *NewBill) Uploaded() (billID, fileURL string) {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	return nb.upload.billID, nb.upload.fileURL
}

func (nb *NewBill) reset() {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	nb.upload = upload{}
}

func (nb *NewBill) email() string {
	if nb.user != nil && nb.user.Email != "" {
		return nb.user.Email
	}
	if u := session.CurrentUser(nb.env.Storage); u != nil {
		return u.Email
	}
	return ""
}

func (nb *NewBill) value(id string) string {
	if el := nb.env.Document.ByID(id); el != nil {
		return strings.TrimSpace(el.Value())
	}
	return ""
}

// parseInt keeps the integer part of a numeric field, 0 when unparseable
func parseInt(s string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return int(f)
}

func multipartBody(file ui.File, fileName, email string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write file part: %w", err)
	}
	if err := w.WriteField("email", email); err != nil {
		return nil, "", fmt.Errorf("failed to write email field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
