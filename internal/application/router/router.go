// Package router decides what the client shows for a location. It renders
// each route into the document root, builds the route controller and keeps
// the browser history in step.
package router

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/controller"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/interfaces/ui"
	"github.com/garyjia/billed/internal/session"
	"github.com/garyjia/billed/internal/view"
)

// Markers toggled by the router outside the root element
const (
	RootID          = "root"
	LoginPageClass  = "login-page"
	ActiveIconClass = "active-icon"
	LayoutIcon1     = "layout-icon1"
	LayoutIcon2     = "layout-icon2"
)

// Deps are the collaborators of a Router
type Deps struct {
	Document    *ui.Document
	History     *ui.History
	Storage     port.Storage
	Store       port.Store
	Views       *view.Renderer
	Controllers controller.Factory
	Modal       ui.ModalPresenter
	// Loop is shared with whatever delivers UI events; optional
	Loop   *ui.EventLoop
	Logger *zap.Logger
}

// Router owns the current route of the client
type Router struct {
	deps   Deps
	logger *zap.Logger

	mu         sync.Mutex
	generation uint64
	current    entity.Route
	dashboard  controller.DashboardLoader
}

// New creates a router. Nothing is rendered until Initialize or Navigate.
func New(deps Deps) *Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{deps: deps, logger: logger}
}

// NavigateFunc returns the navigation handle passed to controllers
func (r *Router) NavigateFunc() controller.NavigateFunc {
	return r.Navigate
}

// Current returns the route on screen
func (r *Router) Current() entity.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Initialize renders the route of the current location. The root path
// without a hash shows the login page; otherwise the hash selects the
// route. An unknown location renders nothing and yields RouteNone.
func (r *Router) Initialize(ctx context.Context) entity.Route {
	loc := r.deps.History.Location()

	if loc.Pathname == entity.PathLogin && loc.Hash == "" {
		gen := r.begin(entity.RouteLogin)
		r.showLogin(gen)
		return entity.RouteLogin
	}

	if loc.Hash != "" {
		switch route := entity.RouteForPath(loc.Hash); route {
		case entity.RouteBills, entity.RouteNewBill, entity.RouteDashboard:
			r.show(ctx, route)
			return route
		}
	}

	r.logger.Debug("No route for location", zap.String("location", loc.URL()))
	return entity.RouteNone
}

// Navigate pushes path onto the history and renders its route. Unknown
// paths render the login page. Fetch failures render the error view.
func (r *Router) Navigate(ctx context.Context, path string) {
	r.deps.History.PushState(path)

	route := entity.RouteForPath(path)
	if route == entity.RouteNone {
		route = entity.RouteLogin
	}
	r.show(ctx, route)
}

// HandlePopState reacts to the browser moving through its history. At the
// root without a session the login page is forced; with a session the
// location is navigated to; otherwise nothing happens.
func (r *Router) HandlePopState(ctx context.Context) {
	loc := r.deps.History.Location()
	user := session.CurrentUser(r.deps.Storage)

	switch {
	case loc.Pathname == entity.PathLogin && user == nil:
		gen := r.begin(entity.RouteLogin)
		if body := r.deps.Document.Body(); body != nil {
			body.AddClass(LoginPageClass)
		}
		r.render(gen, r.deps.Views.Login())
	case user != nil:
		r.Navigate(ctx, loc.Path())
	}
}

func (r *Router) show(ctx context.Context, route entity.Route) {
	gen := r.begin(route)
	switch route {
	case entity.RouteLogin:
		r.showLogin(gen)
	case entity.RouteBills:
		r.showBills(ctx, gen)
	case entity.RouteNewBill:
		r.showNewBill(gen)
	case entity.RouteDashboard:
		r.showDashboard(ctx, gen)
	}
}

func (r *Router) showLogin(gen uint64) {
	if !r.render(gen, r.deps.Views.Login()) {
		return
	}
	if body := r.deps.Document.Body(); body != nil {
		body.AddClass(LoginPageClass)
	}
	if err := r.deps.Controllers.Login(r.env()); err != nil {
		r.logger.Error("Error initializing Login", zap.Error(err))
	}
}

func (r *Router) showBills(ctx context.Context, gen uint64) {
	layout := r.layout()
	if !r.render(gen, r.deps.Views.Loading(layout)) {
		return
	}
	r.activateIcon(LayoutIcon1, LayoutIcon2)

	rows, err := r.deps.Controllers.Bills(r.env()).GetBills(ctx)
	if err != nil {
		r.logger.Error("Failed to load bills", zap.Error(err))
		r.render(gen, r.deps.Views.Error(layout, err.Error()))
		return
	}
	if !r.render(gen, r.deps.Views.Bills(layout, rows)) {
		return
	}
	r.activateIcon(LayoutIcon1, LayoutIcon2)
	r.deps.Controllers.Bills(r.env())
}

func (r *Router) showNewBill(gen uint64) {
	if !r.render(gen, r.deps.Views.NewBill(r.layout())) {
		return
	}
	r.activateIcon(LayoutIcon2, LayoutIcon1)
	if err := r.deps.Controllers.NewBill(r.env()); err != nil {
		r.logger.Error("Error initializing NewBill", zap.Error(err))
	}
}

func (r *Router) showDashboard(ctx context.Context, gen uint64) {
	preserved := r.releaseDashboard()

	layout := r.layout()
	if !r.render(gen, r.deps.Views.Loading(layout)) {
		return
	}

	loader := r.deps.Controllers.Dashboard(r.env(), nil, 0)
	bills, err := loader.GetBillsAllUsers(ctx)
	loader.Close()
	if err != nil {
		r.logger.Error("Failed to load dashboard bills", zap.Error(err))
		r.render(gen, r.deps.Views.Error(layout, err.Error()))
		return
	}
	if !r.render(gen, r.deps.Views.Dashboard(layout)) {
		return
	}

	d := r.deps.Controllers.Dashboard(r.env(), bills, preserved)
	r.mu.Lock()
	if gen != r.generation {
		r.mu.Unlock()
		d.Close()
		return
	}
	r.dashboard = d
	r.mu.Unlock()
}

// begin starts a navigation: it supersedes in-flight ones, drops every
// element binding and records route as current.
func (r *Router) begin(route entity.Route) uint64 {
	r.mu.Lock()
	r.generation++
	gen := r.generation
	r.current = route
	r.mu.Unlock()

	if route != entity.RouteDashboard {
		r.releaseDashboard()
	}
	r.deps.Document.Reset()
	return gen
}

// releaseDashboard stops the current dashboard and returns the section it
// had open
func (r *Router) releaseDashboard() int {
	r.mu.Lock()
	d := r.dashboard
	r.dashboard = nil
	r.mu.Unlock()

	if d == nil {
		return 0
	}
	preserved := d.PreservedSection()
	d.Close()
	return preserved
}

// render replaces the root content unless a newer navigation started
func (r *Router) render(gen uint64, markup string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation {
		r.logger.Debug("Dropping stale render",
			zap.Uint64("generation", gen),
			zap.Uint64("current", r.generation))
		return false
	}
	root := r.deps.Document.ByID(RootID)
	if root == nil {
		r.logger.Error("Root element not found", zap.String("id", RootID))
		return false
	}
	if err := root.SetInnerHTML(markup); err != nil {
		r.logger.Error("Failed to render route", zap.Error(err))
		return false
	}
	return true
}

// activateIcon marks the active navbar icon when both icons are present
func (r *Router) activateIcon(active, inactive string) {
	on := r.deps.Document.ByID(active)
	off := r.deps.Document.ByID(inactive)
	if on == nil || off == nil {
		return
	}
	on.AddClass(ActiveIconClass)
	off.RemoveClass(ActiveIconClass)
}

func (r *Router) layout() view.Layout {
	return view.LayoutFor(session.CurrentUser(r.deps.Storage))
}

func (r *Router) env() controller.Env {
	return controller.Env{
		Document: r.deps.Document,
		Storage:  r.deps.Storage,
		Store:    r.deps.Store,
		Views:    r.deps.Views,
		Navigate: r.Navigate,
		Modal:    r.deps.Modal,
		Loop:     r.deps.Loop,
		Logger:   r.logger,
	}
}
