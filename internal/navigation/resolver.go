package navigation

import "github.com/gymops/gymops/internal/roles"

// DefaultLoginPath is where unauthenticated navigations are sent.
const DefaultLoginPath = "/login"

// Reason explains why the evaluator refused to render the requested page.
type Reason uint8

const (
	// ReasonUnauthenticated means the session has no role.
	ReasonUnauthenticated Reason = iota + 1
	// ReasonUnknownRole means the role is outside the enumeration.
	ReasonUnknownRole
	// ReasonRoleMismatch means a node on the path excludes the role.
	ReasonRoleMismatch
	// ReasonOverride means the denying node declares a target for the role.
	ReasonOverride
	// ReasonLanding means the path is an alias for the role's landing page.
	ReasonLanding
)

func (r Reason) String() string {
	switch r {
	case ReasonUnauthenticated:
		return "unauthenticated"
	case ReasonUnknownRole:
		return "unknown_role"
	case ReasonRoleMismatch:
		return "role_mismatch"
	case ReasonOverride:
		return "override"
	case ReasonLanding:
		return "landing"
	default:
		return "none"
	}
}

// Class groups redirects by the fallback family they use.
type Class uint8

const (
	// ClassUnauthenticated sends the user to the login page.
	ClassUnauthenticated Class = iota + 1
	// ClassRoleMismatch sends the user to the global fallback for the role.
	ClassRoleMismatch
	// ClassSectionLocal keeps the user inside the current section.
	ClassSectionLocal
	// ClassLanding sends the user to the role's default landing.
	ClassLanding
)

func (c Class) String() string {
	switch c {
	case ClassUnauthenticated:
		return "unauthenticated"
	case ClassRoleMismatch:
		return "role_mismatch"
	case ClassSectionLocal:
		return "section_local"
	case ClassLanding:
		return "landing"
	default:
		return "none"
	}
}

// Redirect is a navigation side effect. Replace is always true: the denied
// path must not stay reachable through history.
type Redirect struct {
	Target  string
	Class   Class
	Reason  Reason
	Replace bool
}

// Denial carries what the resolver needs to pick a target.
type Denial struct {
	Reason Reason
	Role   roles.Role
	// Ancestors are the nodes above the denying node, root first. All of them
	// allow Role.
	Ancestors []*Node
	Denied    *Node
}

// Resolver maps denials to concrete fallback paths.
type Resolver struct {
	loginPath string
}

// NewResolver builds a Resolver. An empty login path uses DefaultLoginPath.
func NewResolver(loginPath string) Resolver {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return Resolver{loginPath: loginPath}
}

// LoginPath is the unauthenticated target.
func (r Resolver) LoginPath() string {
	return r.loginPath
}

// Resolve picks the redirect for d.
func (r Resolver) Resolve(d Denial) Redirect {
	switch d.Reason {
	case ReasonUnauthenticated, ReasonUnknownRole:
		return r.toLogin(d.Reason)
	case ReasonOverride:
		if d.Denied != nil {
			if target, ok := d.Denied.Redirects[d.Role]; ok {
				return Redirect{Target: target, Class: ClassSectionLocal, Reason: d.Reason, Replace: true}
			}
		}
	case ReasonLanding:
		if landing, ok := roles.DefaultLanding(d.Role); ok {
			return Redirect{Target: landing, Class: ClassLanding, Reason: d.Reason, Replace: true}
		}
		return r.toLogin(ReasonUnknownRole)
	}

	for i := len(d.Ancestors) - 1; i >= 0; i-- {
		target, ok := d.Ancestors[i].Fallback.For(d.Role)
		if !ok {
			continue
		}
		class := ClassSectionLocal
		if d.Ancestors[i].parent == nil {
			class = ClassRoleMismatch
		}
		return Redirect{Target: target, Class: class, Reason: ReasonRoleMismatch, Replace: true}
	}
	if landing, ok := roles.DefaultLanding(d.Role); ok {
		return Redirect{Target: landing, Class: ClassRoleMismatch, Reason: ReasonRoleMismatch, Replace: true}
	}
	return r.toLogin(ReasonUnknownRole)
}

func (r Resolver) toLogin(reason Reason) Redirect {
	return Redirect{Target: r.loginPath, Class: ClassUnauthenticated, Reason: reason, Replace: true}
}
