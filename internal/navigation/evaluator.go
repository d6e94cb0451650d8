package navigation

// Evaluator is the single place where access to a path is decided. It is
// pure: the same session and path always produce the same Decision.
type Evaluator struct {
	table    *Table
	resolver Resolver
}

// EvaluatorOption customises an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithLoginPath overrides the unauthenticated redirect target.
func WithLoginPath(p string) EvaluatorOption {
	return func(e *Evaluator) {
		e.resolver = NewResolver(p)
	}
}

// NewEvaluator builds an Evaluator over a frozen table.
func NewEvaluator(table *Table, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{table: table, resolver: NewResolver("")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table returns the table the evaluator reads.
func (e *Evaluator) Table() *Table {
	return e.table
}

// Resolver returns the redirect resolver in use.
func (e *Evaluator) Resolver() Resolver {
	return e.resolver
}

// Evaluate decides what happens when sess navigates to p. It never panics and
// has a defined answer for every input.
func (e *Evaluator) Evaluate(sess Session, p string) Decision {
	clean := CleanPath(p)
	if sess.Loading {
		return Decision{Kind: KindPending, Path: clean}
	}
	if sess.Role == "" {
		return e.redirect(clean, Match{}, Denial{Reason: ReasonUnauthenticated})
	}
	if !sess.Role.Valid() {
		return e.redirect(clean, Match{}, Denial{Reason: ReasonUnknownRole, Role: sess.Role})
	}
	if e.table == nil {
		return Decision{Kind: KindNotFound, Path: clean}
	}

	m, ok := e.table.Match(clean)
	if !ok {
		return Decision{Kind: KindNotFound, Path: clean}
	}

	for i, n := range m.Chain {
		if n.Allows(sess.Role) {
			continue
		}
		reason := ReasonRoleMismatch
		if _, ok := n.Redirects[sess.Role]; ok {
			reason = ReasonOverride
		}
		return e.redirect(clean, m, Denial{
			Reason:    reason,
			Role:      sess.Role,
			Ancestors: m.Chain[:i],
			Denied:    n,
		})
	}

	if m.Leaf().Landing {
		return e.redirect(clean, m, Denial{Reason: ReasonLanding, Role: sess.Role, Ancestors: m.Chain})
	}
	return Decision{Kind: KindAllow, Path: clean, Match: m}
}

func (e *Evaluator) redirect(clean string, m Match, d Denial) Decision {
	return Decision{Kind: KindRedirect, Path: clean, Match: m, Redirect: e.resolver.Resolve(d)}
}
