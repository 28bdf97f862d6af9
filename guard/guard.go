// Package guard decides, for every protected navigation, whether the
// current session may render a route or must be redirected — and where
// to. It is a side-effect-free projection of (session state, required
// role); it holds no mutable state of its own.
package guard

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/Erkan3034/yurtgate/session"
	"github.com/Erkan3034/yurtgate/users"
)

// Navigation targets. These mirror the client's route layout.
const (
	LoginRoute          = "/auth/login"
	HomeRoute           = "/"
	ExploreRoute        = "/app/explore"
	SellerProductsRoute = "/seller/products"
)

// Outcome is the kind of decision the guard reaches.
type Outcome int

const (
	// Render means the route's content may be shown.
	Render Outcome = iota
	// Pending means the session is still unresolved; show a loading
	// placeholder and re-evaluate on the next session change. Never
	// redirect on Pending — that is the flash-then-redirect race.
	Pending
	// Redirect means navigate to Decision.Target instead.
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Pending:
		return "pending"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is a navigation outcome. Target is set only for Redirect.
type Decision struct {
	Outcome Outcome
	Target  string
}

func render() Decision  { return Decision{Outcome: Render} }
func pending() Decision { return Decision{Outcome: Pending} }

func redirect(to string) Decision {
	return Decision{Outcome: Redirect, Target: to}
}

//go:embed model.conf
var rbacModel string

// Guard evaluates access decisions against a fixed role policy: each
// role may enter its own routes, and admin inherits student and seller.
// The policy is immutable after construction, keeping Evaluate a pure
// function of its inputs.
type Guard struct {
	enforcer casbin.IEnforcer
}

// New builds the guard with its embedded RBAC model.
func New() (*Guard, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("parse rbac model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	for _, role := range []users.Role{users.RoleStudent, users.RoleSeller, users.RoleAdmin} {
		if _, err := enforcer.AddPolicy(string(role), string(role)); err != nil {
			return nil, fmt.Errorf("add policy for %s: %w", role, err)
		}
	}
	// Administrative override is monotonic: everything a student or a
	// seller can reach, an admin can too.
	for _, inherited := range []users.Role{users.RoleStudent, users.RoleSeller} {
		if _, err := enforcer.AddGroupingPolicy(string(users.RoleAdmin), string(inherited)); err != nil {
			return nil, fmt.Errorf("add admin grouping for %s: %w", inherited, err)
		}
	}
	return &Guard{enforcer: enforcer}, nil
}

// Evaluate maps (session state, required role) to a navigation outcome.
// requiredRole "" means the route only requires an authenticated user.
//
// The decision never fails and never panics: an enforcer error counts
// as a denial, and every branch terminates in a concrete outcome.
func (g *Guard) Evaluate(st session.State, requiredRole users.Role) Decision {
	if st.Phase == session.Unresolved {
		return pending()
	}
	// Being logged in at all is checked first; admin-equivalence never
	// bypasses it.
	if st.User == nil {
		return redirect(LoginRoute)
	}
	if requiredRole == "" {
		return render()
	}

	subject := st.User.Role
	if st.User.AdminEquivalent() {
		subject = users.RoleAdmin
	}
	allowed, err := g.enforcer.Enforce(string(subject), string(requiredRole))
	if err != nil {
		allowed = false
	}
	if allowed {
		return render()
	}

	if requiredRole == users.RoleAdmin {
		// Admin sections are invisible, not just inaccessible: send the
		// user home rather than hinting at a login problem.
		return redirect(HomeRoute)
	}
	// Role mismatch: the target is picked by the acting user's own
	// role, not by what the route wanted.
	if st.User.Role == users.RoleSeller {
		return redirect(SellerProductsRoute)
	}
	return redirect(ExploreRoute)
}
