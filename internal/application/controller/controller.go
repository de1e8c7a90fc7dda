// Package controller holds what every screen controller is constructed with.
package controller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/format"
	"github.com/garyjia/billed/internal/interfaces/ui"
	"github.com/garyjia/billed/internal/view"
)

// NavigateFunc moves the client to a route path
type NavigateFunc func(ctx context.Context, path string)

// Env is the set of collaborators handed to a controller
type Env struct {
	Document *ui.Document
	Storage  port.Storage
	// Store is nil when the client runs without a backend
	Store    port.Store
	Views    *view.Renderer
	Navigate NavigateFunc
	// Modal is optional
	Modal ui.ModalPresenter
	// Loop serialises deferred work with UI events; nil runs it directly
	Loop   *ui.EventLoop
	Logger *zap.Logger
}

// Log returns the env logger, or a no-op logger
func (e Env) Log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// AfterFunc runs fn after delay on the event loop, or on its own
// goroutine when there is none
func (e Env) AfterFunc(delay time.Duration, fn func()) (stop func() bool) {
	if e.Loop != nil {
		return e.Loop.AfterFunc(delay, fn)
	}
	return time.AfterFunc(delay, fn).Stop
}

// Go navigates if a NavigateFunc is set
func (e Env) Go(ctx context.Context, path string) {
	if e.Navigate != nil {
		e.Navigate(ctx, path)
	}
}

// BillsLoader fetches the employee bills table
type BillsLoader interface {
	GetBills(ctx context.Context) ([]format.BillRow, error)
}

// DashboardLoader fetches the bills under review
type DashboardLoader interface {
	GetBillsAllUsers(ctx context.Context) ([]entity.Bill, error)
	// PreservedSection is the last opened section, 0 when none
	PreservedSection() int
	Close()
}

// Factory constructs the controller of each route
type Factory interface {
	Login(env Env) error
	Bills(env Env) BillsLoader
	NewBill(env Env) error
	Dashboard(env Env, bills []entity.Bill, preservedSection int) DashboardLoader
}
