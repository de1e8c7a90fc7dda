// Package dashboard is the administrator review workspace: three status
// sections of bill cards and a side panel holding the review form of the
// selected bill.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/controller"
	"github.com/garyjia/billed/internal/application/controller/logout"
	"github.com/garyjia/billed/internal/application/dispatcher"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/command"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/workflow"
	"github.com/garyjia/billed/internal/format"
	"github.com/garyjia/billed/internal/interfaces/ui"
	"github.com/garyjia/billed/internal/session"
	"github.com/garyjia/billed/pkg/utils"
)

// Element ids and classes of the dashboard
const (
	HeaderPrefix    = "status-bills-header"
	ArrowPrefix     = "arrow-icon"
	ContainerPrefix = "status-bills-container"
	CardPrefix      = "open-bill"
	IconEye         = "icon-eye-d"
	ButtonAccept    = "btn-accept-bill"
	ButtonRefuse    = "btn-refuse-bill"
	CommentInput    = "commentary2"
	ModalID         = "modaleFileAdmin1"
	RightContainer  = "dashboard-right-container"
	Navbar          = "vertical-navbar"
)

// Card backgrounds
const (
	ColorClosed = "#0D5AE5"
	ColorOpen   = "#2A2B35"
)

// PreserveDelay is how long after construction the preserved section reopens
const PreserveDelay = 100 * time.Millisecond

const handlerName = "dashboard"

// Dashboard is the review workspace controller
type Dashboard struct {
	env        controller.Env
	viewer     format.Viewer
	dispatcher dispatcher.Dispatcher

	mu        sync.Mutex
	bills     []entity.Bill
	section   SectionState
	panel     PanelState
	preserved int
	stopTimer func() bool
	closed    bool
}

var _ controller.DashboardLoader = (*Dashboard)(nil)

// Option configures a Dashboard
type Option func(*Dashboard)

// WithPreservedSection reopens section index shortly after construction
// when there are bills to show
func WithPreservedSection(index int) Option {
	return func(d *Dashboard) {
		d.preserved = index
	}
}

// New builds the controller for bills and binds the section headers, their
// arrows and the bill cards. The viewer is read from session storage once.
func New(env controller.Env, bills []entity.Bill, opts ...Option) *Dashboard {
	d := &Dashboard{
		env:        env,
		viewer:     session.CurrentViewer(env.Storage),
		dispatcher: dispatcher.NewDispatcher(dispatcher.WithLogger(utils.NewKVLogger(env.Log()))),
		bills:      append([]entity.Bill(nil), bills...),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.subscribe()
	d.bind()

	if d.preserved > 0 && len(d.bills) > 0 {
		index := d.preserved
		d.stopTimer = env.AfterFunc(PreserveDelay, func() {
			d.mu.Lock()
			closed := d.closed
			d.mu.Unlock()
			if closed || env.Document.ByID(HeaderPrefix+strconv.Itoa(index)) == nil {
				return
			}
			d.HandleShowTickets(context.Background(), index)
		})
	}

	logout.New(env)
	return d
}

func (d *Dashboard) subscribe() {
	d.dispatcher.SubscribeNamed(command.TypeOpenSection, handlerName, func(ctx context.Context, cmd *command.Command) error {
		d.HandleShowTickets(ctx, cmd.Section)
		return nil
	})
	d.dispatcher.SubscribeNamed(command.TypeEditBill, handlerName, func(ctx context.Context, cmd *command.Command) error {
		bill, ok := d.find(cmd.BillID)
		if !ok {
			return fmt.Errorf("bill %s not found", cmd.BillID)
		}
		d.HandleEditTicket(ctx, cmd.UIEvent(), bill, d.Bills())
		return nil
	})
	d.dispatcher.SubscribeNamed(command.TypeAccept, handlerName, func(ctx context.Context, cmd *command.Command) error {
		bill, ok := d.find(cmd.BillID)
		if !ok {
			return fmt.Errorf("bill %s not found", cmd.BillID)
		}
		return d.HandleAcceptSubmit(ctx, cmd.UIEvent(), bill)
	})
	d.dispatcher.SubscribeNamed(command.TypeRefuse, handlerName, func(ctx context.Context, cmd *command.Command) error {
		bill, ok := d.find(cmd.BillID)
		if !ok {
			return fmt.Errorf("bill %s not found", cmd.BillID)
		}
		return d.HandleRefuseSubmit(ctx, cmd.UIEvent(), bill)
	})
	d.dispatcher.SubscribeNamed(command.TypeViewProof, handlerName, func(ctx context.Context, cmd *command.Command) error {
		d.HandleClickIconEye(ctx)
		return nil
	})
}

// bind wires the section controls and the cards. Bindings are delegated,
// so they apply to elements rendered after construction.
func (d *Dashboard) bind() {
	doc := d.env.Document
	for i := 1; i <= 3; i++ {
		index := i
		doc.On(ui.EventClick, HeaderPrefix+strconv.Itoa(index), func(ctx context.Context, ev *ui.Event) error {
			return d.Execute(ctx, command.OpenSection(index).WithEvent(ev))
		})
		doc.On(ui.EventClick, ArrowPrefix+strconv.Itoa(index), func(ctx context.Context, ev *ui.Event) error {
			ev.StopPropagation()
			return d.Execute(ctx, command.OpenSection(index).WithEvent(ev))
		})
	}
	doc.OnPrefix(ui.EventClick, CardPrefix, func(ctx context.Context, ev *ui.Event) error {
		billID := strings.TrimPrefix(ev.CurrentTargetID, CardPrefix)
		if _, ok := d.find(billID); !ok {
			return nil
		}
		return d.Execute(ctx, command.EditBill(billID).WithEvent(ev))
	})
}

// Execute runs cmd through the dashboard handler table
func (d *Dashboard) Execute(ctx context.Context, cmd *command.Command) error {
	return d.dispatcher.Dispatch(ctx, cmd)
}

// HandleShowTickets toggles section index and returns the full bill list.
// An opened section lists the bills of its status visible to the viewer.
func (d *Dashboard) HandleShowTickets(ctx context.Context, index int) []entity.Bill {
	status, ok := format.StatusForSection(index)

	d.mu.Lock()
	bills := append([]entity.Bill(nil), d.bills...)
	if !ok {
		d.mu.Unlock()
		d.env.Log().Warn("Unknown dashboard section", zap.Int("index", index))
		return bills
	}
	d.section = d.section.Toggle(index)
	open := d.section.IsOpen(index)
	if open {
		d.preserved = index
	}
	d.mu.Unlock()

	doc := d.env.Document
	arrow := doc.ByID(ArrowPrefix + strconv.Itoa(index))
	container := doc.ByID(ContainerPrefix + strconv.Itoa(index))

	if open {
		if arrow != nil {
			arrow.SetStyle("transform", "rotate(0deg)")
		}
		if container != nil {
			cards := d.env.Views.Cards(format.FilteredBills(bills, status, d.viewer))
			if err := container.SetInnerHTML(cards); err != nil {
				d.env.Log().Error("Failed to render bill cards", zap.Int("section", index), zap.Error(err))
			}
		}
		return bills
	}

	if arrow != nil {
		arrow.SetStyle("transform", "rotate(90deg)")
	}
	if container != nil {
		_ = container.SetInnerHTML("")
	}
	return bills
}

// HandleEditTicket selects bill in the review panel. Selecting another bill
// shows its form; selecting the shown bill again collapses the panel.
func (d *Dashboard) HandleEditTicket(ctx context.Context, ev *ui.Event, bill entity.Bill, bills []entity.Bill) {
	d.mu.Lock()
	d.panel = d.panel.Select(bill.ID)
	expanded := d.panel.Expanded()
	d.mu.Unlock()

	doc := d.env.Document
	if expanded {
		d.expand(bill, bills)
	} else {
		d.collapse(bill)
	}

	if doc.ByID(IconEye) != nil {
		doc.On(ui.EventClick, IconEye, func(ctx context.Context, ev *ui.Event) error {
			return d.Execute(ctx, command.ViewProof().WithEvent(ev))
		})
	} else {
		doc.Off(ui.EventClick, IconEye)
	}
	if doc.ByID(ButtonAccept) != nil {
		doc.On(ui.EventClick, ButtonAccept, func(ctx context.Context, ev *ui.Event) error {
			return d.Execute(ctx, command.Accept(bill.ID).WithEvent(ev))
		})
	} else {
		doc.Off(ui.EventClick, ButtonAccept)
	}
	if doc.ByID(ButtonRefuse) != nil {
		doc.On(ui.EventClick, ButtonRefuse, func(ctx context.Context, ev *ui.Event) error {
			return d.Execute(ctx, command.Refuse(bill.ID).WithEvent(ev))
		})
	} else {
		doc.Off(ui.EventClick, ButtonRefuse)
	}
}

func (d *Dashboard) expand(bill entity.Bill, bills []entity.Bill) {
	doc := d.env.Document
	for _, b := range bills {
		if card := doc.ByID(CardPrefix + b.ID); card != nil {
			card.SetStyle("background", ColorClosed)
		}
	}
	if card := doc.ByID(CardPrefix + bill.ID); card != nil {
		card.SetStyle("background", ColorOpen)
	}
	if right := doc.ByClass(RightContainer); right != nil {
		if err := right.SetInnerHTML(d.env.Views.DashboardForm(format.FormatBillForDisplay(bill))); err != nil {
			d.env.Log().Error("Failed to render review form", zap.String("bill_id", bill.ID), zap.Error(err))
		}
	}
	if navbar := doc.ByClass(Navbar); navbar != nil {
		navbar.SetStyle("height", "150vh")
	}
}

func (d *Dashboard) collapse(bill entity.Bill) {
	doc := d.env.Document
	if card := doc.ByID(CardPrefix + bill.ID); card != nil {
		card.SetStyle("background", ColorClosed)
	}
	if right := doc.ByClass(RightContainer); right != nil {
		if err := right.SetInnerHTML(d.env.Views.Placeholder()); err != nil {
			d.env.Log().Error("Failed to render placeholder", zap.Error(err))
		}
	}
	if navbar := doc.ByClass(Navbar); navbar != nil {
		navbar.SetStyle("height", "120vh")
	}
}

// HandleClickIconEye shows the receipt of the bill in the review panel.
// Disabled icons and invalid urls are ignored.
func (d *Dashboard) HandleClickIconEye(ctx context.Context) {
	doc := d.env.Document
	icon := doc.ByID(IconEye)
	if icon == nil || icon.HasClass("disabled") {
		return
	}
	billURL := icon.Attr("data-bill-url")
	if format.IsInvalidRef(billURL) {
		return
	}

	modal := doc.ByID(ModalID)
	if modal == nil {
		d.env.Log().Error("Receipt modal not found", zap.String("id", ModalID))
		return
	}
	width := int(math.Floor(float64(modal.Width()) * 0.8))
	if body := modal.FindClass("modal-body"); body != nil {
		if err := body.SetInnerHTML(d.env.Views.Proof(width, billURL)); err != nil {
			d.env.Log().Error("Failed to render receipt", zap.Error(err))
			return
		}
	}
	modal.SetAttr("aria-hidden", "false")
	if d.env.Modal != nil {
		d.env.Modal.Show(modal)
	}
}

// HandleAcceptSubmit accepts bill with the comment typed in the panel
func (d *Dashboard) HandleAcceptSubmit(ctx context.Context, ev *ui.Event, bill entity.Bill) error {
	return d.review(ctx, ev, bill, entity.StatusAccepted)
}

// HandleRefuseSubmit refuses bill with the comment typed in the panel
func (d *Dashboard) HandleRefuseSubmit(ctx context.Context, ev *ui.Event, bill entity.Bill) error {
	return d.review(ctx, ev, bill, entity.StatusRefused)
}

// review persists a decision, replaces the bill in memory and reloads the
// dashboard. Store errors are returned unchanged.
func (d *Dashboard) review(ctx context.Context, ev *ui.Event, bill entity.Bill, decision entity.Status) error {
	if ev != nil {
		ev.PreventDefault()
	}

	status, err := workflow.Decide(ctx, bill.Status, decision)
	if err != nil {
		return err
	}

	var comment string
	if input := d.env.Document.ByID(CommentInput); input != nil {
		comment = input.Value()
	}

	payload := entity.NewReviewPayload(bill, status, comment)
	if _, err := d.UpdateBill(ctx, payload); err != nil {
		return err
	}

	d.mu.Lock()
	d.bills = entity.ReplaceBill(d.bills, payload.Bill())
	d.mu.Unlock()

	d.env.Log().Info("Bill reviewed",
		zap.String("bill_id", bill.ID),
		zap.String("status", status.String()))
	d.env.Go(ctx, entity.PathDashboard)
	return nil
}

// GetBillsAllUsers lists every bill of the store. Without a store the list
// is empty and nothing is fetched.
func (d *Dashboard) GetBillsAllUsers(ctx context.Context) ([]entity.Bill, error) {
	if d.env.Store == nil {
		return []entity.Bill{}, nil
	}
	bills, err := d.env.Store.Bills().List(ctx, nil)
	if err != nil {
		return nil, err
	}
	for i := range bills {
		if bills[i].ID == "" {
			bills[i].ID = bills[i].Key
		}
	}
	return bills, nil
}

// UpdateBill sends payload as the new body of its bill. Without a store it
// does nothing.
func (d *Dashboard) UpdateBill(ctx context.Context, payload entity.ReviewPayload) (*entity.Bill, error) {
	if d.env.Store == nil {
		return nil, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bill %s: %w", payload.ID, err)
	}
	return d.env.Store.Bills().Update(ctx, port.UpdateRequest{Data: data, Selector: payload.ID})
}

// Bills returns a copy of the bills held by the controller
func (d *Dashboard) Bills() []entity.Bill {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]entity.Bill(nil), d.bills...)
}

// Section returns the section state
func (d *Dashboard) Section() SectionState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.section
}

// Panel returns the review panel state
func (d *Dashboard) Panel() PanelState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.panel
}

// PreservedSection is the last opened section, or the one to reopen
func (d *Dashboard) PreservedSection() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.preserved
}

// Close stops the pending section reopen and the handler table
func (d *Dashboard) Close() {
	d.mu.Lock()
	stop := d.stopTimer
	d.stopTimer = nil
	d.closed = true
	d.mu.Unlock()

	if stop != nil {
		stop()
	}
	_ = d.dispatcher.Close()
}

func (d *Dashboard) find(billID string) (entity.Bill, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return entity.FindBill(d.bills, billID)
}
