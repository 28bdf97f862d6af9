package guard

import (
	"sort"
	"strings"

	"github.com/Erkan3034/yurtgate/session"
	"github.com/Erkan3034/yurtgate/users"
)

// Route declares the access requirement of one route subtree.
type Route struct {
	// Prefix is the path prefix this declaration covers, e.g. "/seller".
	Prefix string
	// Protected routes require an authenticated user.
	Protected bool
	// Required is the role needed beyond being logged in; "" means any
	// authenticated user. Ignored when Protected is false.
	Required users.Role
}

// Table is the route table consulted by the guard: an ordered set of
// prefix declarations, longest prefix winning. It is immutable after
// construction.
type Table struct {
	routes []Route
}

// NewTable builds a table from the given declarations.
func NewTable(routes []Route) *Table {
	sorted := make([]Route, len(routes))
	copy(sorted, routes)
	// Longest prefix first, so Resolve can take the first match.
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})
	return &Table{routes: sorted}
}

// DefaultTable mirrors the Yurt Market client's route layout: landing
// and auth pages are public, /app is for any signed-in user, /seller
// for sellers, and /app/admin for admins.
func DefaultTable() *Table {
	return NewTable([]Route{
		{Prefix: "/", Protected: false},
		{Prefix: "/auth", Protected: false},
		{Prefix: "/app", Protected: true},
		{Prefix: "/seller", Protected: true, Required: users.RoleSeller},
		{Prefix: "/app/admin", Protected: true, Required: users.RoleAdmin},
	})
}

// Routes returns the declarations in match order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Resolve finds the declaration covering path, longest prefix first.
func (t *Table) Resolve(path string) (Route, bool) {
	for _, r := range t.routes {
		if matchesPrefix(path, r.Prefix) {
			return r, true
		}
	}
	return Route{}, false
}

func matchesPrefix(path, prefix string) bool {
	if prefix == "/" {
		// Root only matches exactly; it is the landing page, not a
		// catch-all that would shadow unknown paths.
		return path == "/"
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Decide resolves path against the table and evaluates the guard for
// it. Unknown paths are sent home, like the client's catch-all route.
func (t *Table) Decide(g *Guard, st session.State, path string) Decision {
	route, ok := t.Resolve(path)
	if !ok {
		return redirect(HomeRoute)
	}
	if !route.Protected {
		return render()
	}
	return g.Evaluate(st, route.Required)
}
