// Package factory builds the controller of each route.
package factory

import (
	"github.com/garyjia/billed/internal/application/controller"
	"github.com/garyjia/billed/internal/application/controller/bills"
	"github.com/garyjia/billed/internal/application/controller/dashboard"
	"github.com/garyjia/billed/internal/application/controller/login"
	"github.com/garyjia/billed/internal/application/controller/newbill"
	"github.com/garyjia/billed/internal/domain/entity"
)

// Controllers is the production controller.Factory
type Controllers struct{}

var _ controller.Factory = Controllers{}

// New returns the production factory
func New() Controllers {
	return Controllers{}
}

func (Controllers) Login(env controller.Env) error {
	_, err := login.New(env)
	return err
}

func (Controllers) Bills(env controller.Env) controller.BillsLoader {
	return bills.New(env)
}

func (Controllers) NewBill(env controller.Env) error {
	newbill.New(env)
	return nil
}

func (Controllers) Dashboard(env controller.Env, bills []entity.Bill, preservedSection int) controller.DashboardLoader {
	var opts []dashboard.Option
	if preservedSection > 0 {
		opts = append(opts, dashboard.WithPreservedSection(preservedSection))
	}
	return dashboard.New(env, bills, opts...)
}
