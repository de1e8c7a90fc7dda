// Package bills is the controller of the employee bills table.
package bills

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/controller"
	"github.com/garyjia/billed/internal/application/controller/logout"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/format"
	"github.com/garyjia/billed/internal/interfaces/ui"
)

// Element ids of the bills page
const (
	ButtonNewBill = "btn-new-bill"
	EyePrefix     = "eye-"
	ModalID       = "modaleFile"
)

// Bills is the employee bills controller
type Bills struct {
	env controller.Env
}

var _ controller.BillsLoader = (*Bills)(nil)

// New binds the new bill button, the eye icons and the disconnect button
func New(env controller.Env) *Bills {
	b := &Bills{env: env}
	env.Document.On(ui.EventClick, ButtonNewBill, b.handleClickNewBill)
	env.Document.OnPrefix(ui.EventClick, EyePrefix, b.handleClickEye)
	logout.New(env)
	return b
}

func (b *Bills) handleClickNewBill(ctx context.Context, ev *ui.Event) error {
	b.env.Go(ctx, entity.PathNewBill)
	return nil
}

func (b *Bills) handleClickEye(ctx context.Context, ev *ui.Event) error {
	icon := b.env.Document.ByID(ev.CurrentTargetID)
	if icon == nil {
		return nil
	}
	b.HandleClickIconEye(icon)
	return nil
}

// HandleClickIconEye shows the receipt of icon's bill in the modal at half
// the modal width. Icons with an invalid url are ignored.
func (b *Bills) HandleClickIconEye(icon *ui.Element) {
	billURL := icon.Attr("data-bill-url")
	if format.IsInvalidRef(billURL) {
		return
	}
	modal := b.env.Document.ByID(ModalID)
	if modal == nil {
		b.env.Log().Error("Receipt modal not found", zap.String("id", ModalID))
		return
	}
	body := modal.FindClass("modal-body")
	if body == nil {
		return
	}

	width := int(math.Floor(float64(modal.Width()) * 0.5))
	if err := body.SetInnerHTML(b.env.Views.Proof(width, billURL)); err != nil {
		b.env.Log().Error("Failed to render receipt", zap.Error(err))
		return
	}
	modal.SetAttr("aria-hidden", "false")
	if b.env.Modal != nil {
		b.env.Modal.Show(modal)
	}
}

// GetBills lists the bills of the store formatted for the table, newest
// first. Without a store the list is empty.
func (b *Bills) GetBills(ctx context.Context) ([]format.BillRow, error) {
	if b.env.Store == nil {
		return []format.BillRow{}, nil
	}
	bills, err := b.env.Store.Bills().List(ctx, nil)
	if err != nil {
		return nil, err
	}

	for _, bill := range bills {
		if _, err := format.ParseDate(bill.Date); err != nil {
			b.env.Log().Info("Keeping unformatted bill date",
				zap.String("bill_id", bill.ID),
				zap.String("date", bill.Date),
				zap.Error(err))
		}
	}

	rows := format.FormatBillRows(bills)
	format.SortNewestFirst(rows)
	return rows, nil
}
