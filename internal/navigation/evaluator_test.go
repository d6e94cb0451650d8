package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymops/gymops/internal/roles"
)

func TestEvaluateScenarios(t *testing.T) {
	e := NewEvaluator(fixtureTable(t))

	cases := []struct {
		name   string
		sess   Session
		path   string
		kind   Kind
		target string
		class  Class
		page   ComponentRef
	}{
		{name: "member excluded from memberships", sess: Session{Role: roles.Member}, path: "/memberships", kind: KindRedirect, target: "/dashboard", class: ClassRoleMismatch},
		{name: "trainer inquiry override", sess: Session{Role: roles.Trainer}, path: "/crm/inquiry", kind: KindRedirect, target: "/crm/my-leads", class: ClassSectionLocal},
		{name: "trainer section fallback", sess: Session{Role: roles.Trainer}, path: "/crm/conversions", kind: KindRedirect, target: "/crm/my-leads", class: ClassSectionLocal},
		{name: "staff section default", sess: Session{Role: roles.Staff}, path: "/crm/conversions", kind: KindRedirect, target: "/crm/leads", class: ClassSectionLocal},
		{name: "branch admin nested settings", sess: Session{Role: roles.BranchAdmin}, path: "/branchadmin/settings/general", kind: KindAllow, page: "General"},
		{name: "staff superadmin", sess: Session{Role: roles.Staff}, path: "/superadmin/plans/list", kind: KindRedirect, target: "/dashboard", class: ClassRoleMismatch},
		{name: "unknown path", sess: Session{Role: roles.SuperAdmin}, path: "/nonexistent/xyz", kind: KindNotFound},
		{name: "unauthenticated", sess: Session{}, path: "/dashboard", kind: KindRedirect, target: "/login", class: ClassUnauthenticated},
		{name: "unknown role fails closed", sess: Session{Role: "owner"}, path: "/dashboard", kind: KindRedirect, target: "/login", class: ClassUnauthenticated},
		{name: "member root landing", sess: Session{Role: roles.Member}, path: "/", kind: KindRedirect, target: "/member/bookings", class: ClassLanding},
		{name: "trainer root landing", sess: Session{Role: roles.Trainer}, path: "", kind: KindRedirect, target: "/trainer/members/assigned", class: ClassLanding},
		{name: "trailing slash", sess: Session{Role: roles.Staff}, path: "/memberships/", kind: KindAllow, page: "Memberships"},
		{name: "decoded question mark is part of the path", sess: Session{Role: roles.SuperAdmin}, path: "/dashboard?x=1", kind: KindNotFound},
		{name: "decoded hash is part of the path", sess: Session{Role: roles.SuperAdmin}, path: "/dashboard#frag", kind: KindNotFound},
		{name: "loading", sess: Session{Loading: true}, path: "/dashboard", kind: KindPending},
		{name: "loading with role", sess: Session{Role: roles.Manager, Loading: true}, path: "/dashboard", kind: KindPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := e.Evaluate(tc.sess, tc.path)
			require.Equal(t, tc.kind, d.Kind, d.Kind.String())
			switch tc.kind {
			case KindRedirect:
				assert.Equal(t, tc.target, d.Target())
				assert.Equal(t, tc.class, d.Redirect.Class)
				assert.True(t, d.Redirect.Replace)
				assert.Empty(t, d.Component())
			case KindAllow:
				assert.Equal(t, tc.page, d.Component())
				assert.Empty(t, d.Target())
			}
		})
	}
}

func TestEvaluateUnknownPathRegardlessOfRole(t *testing.T) {
	e := NewEvaluator(fixtureTable(t))
	for _, r := range roles.All() {
		d := e.Evaluate(Session{Role: r}, "/memberships/1/renew/extra")
		assert.Equal(t, KindNotFound, d.Kind, r)
	}
}

func TestEvaluateWithCustomLoginPath(t *testing.T) {
	e := NewEvaluator(fixtureTable(t), WithLoginPath("/auth/login"))
	d := e.Evaluate(Session{}, "/crm/leads")
	assert.Equal(t, "/auth/login", d.Target())
	assert.Equal(t, ReasonUnauthenticated, d.Redirect.Reason)
}

func TestEvaluateWithoutTableIsNotFound(t *testing.T) {
	d := NewEvaluator(nil).Evaluate(Session{Role: roles.Staff}, "/dashboard")
	assert.Equal(t, KindNotFound, d.Kind)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	e := NewEvaluator(fixtureTable(t))
	sess := Session{Role: roles.Trainer}
	for _, p := range []string{"/crm/inquiry", "/memberships/7", "/docs/a/b", "/nope"} {
		assert.Equal(t, e.Evaluate(sess, p), e.Evaluate(sess, p), p)
	}
}

// Every denial must land on a page the same role can open, for every role and
// every declared route.
func TestRedirectTargetsAreAllowed(t *testing.T) {
	table := fixtureTable(t)
	e := NewEvaluator(table)
	for _, r := range roles.All() {
		sess := Session{Role: r}
		for _, route := range table.Routes() {
			d := e.Evaluate(sess, samplePath(route.Pattern))
			if d.Kind != KindRedirect {
				continue
			}
			next := e.Evaluate(sess, d.Target())
			assert.Equal(t, KindAllow, next.Kind, "%s: %s -> %s", r, route.Pattern, d.Target())
		}
	}
}

// Allowed routes render the node's own page.
func TestAllowedRoutesRenderTheirPage(t *testing.T) {
	table := fixtureTable(t)
	e := NewEvaluator(table)
	for _, route := range table.Routes() {
		if route.Landing {
			continue
		}
		for _, r := range route.Roles {
			d := e.Evaluate(Session{Role: r}, samplePath(route.Pattern))
			require.Equal(t, KindAllow, d.Kind, "%s %s", r, route.Pattern)
			assert.Equal(t, route.Page, d.Component())
		}
	}
}

func samplePath(pattern string) string {
	segs := parseSegments(pattern)
	out := ""
	for _, s := range segs {
		switch s.kind {
		case segParam:
			out += "/42"
		case segWildcard:
			out += "/some/article"
		default:
			out += "/" + s.value
		}
	}
	if out == "" {
		return "/"
	}
	return out
}
