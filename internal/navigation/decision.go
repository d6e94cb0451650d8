package navigation

import "github.com/gymops/gymops/internal/roles"

// Session is the two-field contract of the session provider.
type Session struct {
	Role    roles.Role
	Loading bool
}

// Resolved reports whether the provider has finished resolving.
func (s Session) Resolved() bool {
	return !s.Loading
}

// Authenticated reports whether a role is known.
func (s Session) Authenticated() bool {
	return !s.Loading && s.Role != ""
}

// Kind tags an access decision.
type Kind uint8

const (
	// KindPending means the session is still loading; nothing may render.
	KindPending Kind = iota
	// KindAllow renders the matched page.
	KindAllow
	// KindRedirect replaces the current location with another path.
	KindRedirect
	// KindNotFound renders the generic not-found view.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindAllow:
		return "allow"
	case KindRedirect:
		return "redirect"
	case KindNotFound:
		return "not_found"
	default:
		return "pending"
	}
}

// Decision is the evaluator's answer for one (session, path) pair.
type Decision struct {
	Kind     Kind
	Path     string
	Match    Match
	Redirect Redirect
}

// Component returns the page rendered by an Allow decision.
func (d Decision) Component() ComponentRef {
	if d.Kind != KindAllow {
		return ""
	}
	if leaf := d.Match.Leaf(); leaf != nil {
		return leaf.Page
	}
	return ""
}

// Target returns the redirect destination, empty for other kinds.
func (d Decision) Target() string {
	if d.Kind != KindRedirect {
		return ""
	}
	return d.Redirect.Target
}
