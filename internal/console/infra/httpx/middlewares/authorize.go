package middlewares

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

// screenRules grants full access to a screen and every action below it.
func screenRules(role, screen string) [][]string {
	return [][]string{
		{role, "/screens/" + screen, "GET|PATCH|POST|DELETE"},
		{role, "/screens/" + screen + "/*", "GET|PATCH|POST|DELETE"},
	}
}

// DefaultPolicy maps console roles to the routes they may use. Every role
// inherits what anonymous visitors can do; managers can do everything.
func DefaultPolicy() (policies, groupings [][]string) {
	policies = [][]string{
		{Anonymous, "/screens", "GET"},
		{Anonymous, "/orders/estimate", "POST"},
		{"Customer", "/orders", "POST"},
		{"SalesStaff", "/orders/:id/audit", "GET"},
		{"DeliveryStaff", "/orders/:id/audit", "GET"},
		{"Manager", "/*", ".*"},
	}
	policies = append(policies, screenRules(Anonymous, "blog-feed")...)
	policies = append(policies, screenRules("Customer", "order-history")...)
	policies = append(policies, screenRules("SalesStaff", "sales-staff")...)
	policies = append(policies, screenRules("DeliveryStaff", "delivery-staff")...)

	groupings = [][]string{
		{"Customer", Anonymous},
		{"SalesStaff", Anonymous},
		{"DeliveryStaff", Anonymous},
		{"Manager", Anonymous},
	}
	return policies, groupings
}

// NewEnforcer builds the RBAC enforcer from the embedded model and the given
// rules.
func NewEnforcer(policies, groupings [][]string) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rbac model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rbac enforcer: %w", err)
	}
	if len(policies) > 0 {
		if _, err := e.AddPolicies(policies); err != nil {
			return nil, fmt.Errorf("failed to load policies: %w", err)
		}
	}
	if len(groupings) > 0 {
		if _, err := e.AddGroupingPolicies(groupings); err != nil {
			return nil, fmt.Errorf("failed to load role groupings: %w", err)
		}
	}
	return e, nil
}

// Authorize rejects requests whose subject may not use the route. It must
// run after Session.
func Authorize(e *casbin.Enforcer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := Subject(r.Context())
			allowed, err := e.Enforce(subject, r.URL.Path, r.Method)
			if err != nil {
				slog.ErrorContext(r.Context(), "permission check failed", "error", err)
				writeError(w, http.StatusInternalServerError, "authorization_error", err.Error())
				return
			}
			if !allowed {
				status := http.StatusForbidden
				if subject == Anonymous {
					status = http.StatusUnauthorized
				}
				writeError(w, status, "forbidden", fmt.Sprintf("%s may not %s %s", subject, r.Method, r.URL.Path))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
