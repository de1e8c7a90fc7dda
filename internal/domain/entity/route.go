package entity

// Route identifies one of the client views
type Route string

const (
	RouteNone      Route = ""
	RouteLogin     Route = "Login"
	RouteBills     Route = "Bills"
	RouteNewBill   Route = "NewBill"
	RouteDashboard Route = "Dashboard"
)

// Route paths; the non-root ones double as location hashes
const (
	PathLogin     = "/"
	PathBills     = "#employee/bills"
	PathNewBill   = "#employee/bill/new"
	PathDashboard = "#admin/dashboard"
)

var routePaths = map[Route]string{
	RouteLogin:     PathLogin,
	RouteBills:     PathBills,
	RouteNewBill:   PathNewBill,
	RouteDashboard: PathDashboard,
}

// Path returns the path bound to the route
func (r Route) Path() string {
	return routePaths[r]
}

// String returns the string representation of the route
func (r Route) String() string {
	return string(r)
}

// RouteForPath resolves a path to its route, RouteNone if unknown
func RouteForPath(path string) Route {
	for route, p := range routePaths {
		if p == path {
			return route
		}
	}
	return RouteNone
}
