package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
	"github.com/onlinestore/product-store/internal/pkg/metrics"
)

// Rule is the access requirement of a single route.
type Rule struct {
	public bool
	roles  []domain.Role
}

var (
	// Public routes need no token.
	Public = Rule{public: true}
	// Authenticated routes accept any valid token.
	Authenticated = Rule{}
)

// RequireRole accepts a valid token carrying at least one of roles.
func RequireRole(roles ...domain.Role) Rule {
	return Rule{roles: roles}
}

func (r Rule) String() string {
	switch {
	case r.public:
		return "public"
	case len(r.roles) == 0:
		return "authenticated"
	}
	names := make([]string, len(r.roles))
	for i, role := range r.roles {
		names[i] = string(role)
	}
	return "role:" + strings.Join(names, ",")
}

// Policy maps (method, route pattern) pairs to rules. Routes without an
// entry fall back to Authenticated.
type Policy struct {
	rules map[string]Rule
}

func NewPolicy() *Policy {
	return &Policy{rules: make(map[string]Rule)}
}

// Allow sets rule for path under each of methods.
func (p *Policy) Allow(rule Rule, path string, methods ...string) *Policy {
	for _, m := range methods {
		p.rules[policyKey(m, path)] = rule
	}
	return p
}

// Rule returns the rule for method and the matched route pattern.
func (p *Policy) Rule(method, path string) Rule {
	if r, ok := p.rules[policyKey(method, path)]; ok {
		return r
	}
	return Authenticated
}

func policyKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// Gate evaluates the policy once per request, before the handler runs.
// It must be registered with e.Use so that c.Path() holds the matched route.
func Gate(policy *Policy, tokens ports.TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rule := policy.Rule(c.Request().Method, c.Path())
			if rule.public {
				return next(c)
			}

			if err := authenticate(c, tokens); err != nil {
				metrics.AccessDeniedTotal.WithLabelValues("unauthenticated").Inc()
				return err
			}
			if len(rule.roles) > 0 && !hasAnyRole(PrincipalFrom(c), rule.roles) {
				metrics.AccessDeniedTotal.WithLabelValues("forbidden").Inc()
				return forbidden()
			}
			return next(c)
		}
	}
}
