package navigation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/gymops/gymops/internal/roles"
)

// ErrInvalidTable wraps every route table validation failure.
var ErrInvalidTable = errors.New("navigation: invalid route table")

// ComponentSet reports whether a component is registered.
type ComponentSet interface {
	Has(ref ComponentRef) bool
}

// Table is the frozen route forest. It is never mutated after Build and is
// safe to share between goroutines.
type Table struct {
	root   *Node
	routes []RouteInfo
}

// RouteInfo is a flattened, read-only view of one terminal route.
type RouteInfo struct {
	Pattern   string                `yaml:"pattern"`
	Roles     []roles.Role          `yaml:"roles,flow"`
	AnyRole   bool                  `yaml:"any_role,omitempty"`
	Page      ComponentRef          `yaml:"page,omitempty"`
	Layouts   []ComponentRef        `yaml:"layouts,flow"`
	Landing   bool                  `yaml:"landing,omitempty"`
	Redirects map[roles.Role]string `yaml:"redirects,omitempty"`
	Static    bool                  `yaml:"-"`
}

type buildOptions struct {
	components ComponentSet
}

// BuildOption customises Build.
type BuildOption func(*buildOptions)

// WithComponents makes Build reject nodes that reference unknown components.
func WithComponents(set ComponentSet) BuildOption {
	return func(o *buildOptions) {
		o.components = set
	}
}

// Build validates the tree rooted at root and freezes a copy of it.
func Build(root *Node, opts ...BuildOption) (*Table, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrInvalidTable)
	}
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	frozen := cloneTree(root, nil)
	t := &Table{root: frozen}

	var errs []error
	validate := validator.New()
	t.prepare(frozen, "", validate, o, &errs)
	if len(errs) == 0 {
		errs = append(errs, t.checkFallbacks()...)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, errors.Join(errs...))
	}
	t.routes = t.collectRoutes()
	return t, nil
}

// MustBuild is Build for static tables declared in code.
func MustBuild(root *Node, opts ...BuildOption) *Table {
	t, err := Build(root, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) prepare(n *Node, parentPattern string, validate *validator.Validate, o buildOptions, errs *[]error) {
	if n.parent == nil {
		n.pattern = "/"
	} else {
		n.pattern = joinPattern(parentPattern, n.Path)
	}
	n.segments = parseSegments(n.Path)

	if err := validate.Struct(n); err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", n.pattern, err))
	}
	if n.Roles.Empty() {
		*errs = append(*errs, fmt.Errorf("%s: no roles declared", n.pattern))
	}
	if n.parent == nil && !n.Fallback.Declared() {
		*errs = append(*errs, fmt.Errorf("%s: root must declare a fallback", n.pattern))
	}
	if len(n.Children) > 0 && n.Page != "" {
		*errs = append(*errs, fmt.Errorf("%s: sections render through an index child, not a page", n.pattern))
	}
	if n.Landing && n.Page != "" {
		*errs = append(*errs, fmt.Errorf("%s: landing routes cannot render a page", n.pattern))
	}
	if len(n.Children) == 0 && !n.Terminal() {
		*errs = append(*errs, fmt.Errorf("%s: leaf without page", n.pattern))
	}
	for i, s := range n.segments {
		if s.kind == segWildcard && (i != len(n.segments)-1 || len(n.Children) > 0) {
			*errs = append(*errs, fmt.Errorf("%s: catch-all must be the last segment of a leaf", n.pattern))
		}
	}
	for r := range n.Redirects {
		if n.Roles.Has(r) {
			*errs = append(*errs, fmt.Errorf("%s: override for %s conflicts with its allow set", n.pattern, r))
		}
	}
	if o.components != nil {
		for _, ref := range []ComponentRef{n.Page, n.Layout} {
			if ref != "" && !o.components.Has(ref) {
				*errs = append(*errs, fmt.Errorf("%s: unknown component %q", n.pattern, ref))
			}
		}
	}

	seen := make(map[string]struct{}, len(n.Children))
	for _, c := range n.Children {
		c.parent = n
		key := shape(parseSegments(c.Path))
		if _, dup := seen[key]; dup {
			*errs = append(*errs, fmt.Errorf("%s: duplicate child path %q", n.pattern, c.Path))
		}
		seen[key] = struct{}{}
		t.prepare(c, n.pattern, validate, o, errs)
	}
}

// checkFallbacks proves that every redirect the evaluator can produce lands on
// a page the same role is allowed to see.
func (t *Table) checkFallbacks() []error {
	var errs []error
	for _, r := range roles.All() {
		landing, _ := roles.DefaultLanding(r)
		if !t.allows(r, landing) {
			errs = append(errs, fmt.Errorf("default landing %s for %s is not reachable", landing, r))
		}
	}
	t.walk(t.root, nil, func(n *Node, chain []*Node) {
		reach := reachable(chain)
		if n.Fallback.Declared() {
			for _, r := range reach.Roles() {
				target, ok := n.Fallback.For(r)
				if !ok {
					continue
				}
				if !t.allows(r, target) {
					errs = append(errs, fmt.Errorf("%s: fallback %s is not reachable for %s", n.pattern, target, r))
				}
			}
		}
		parentReach := reachable(chain[:len(chain)-1])
		for r, target := range n.Redirects {
			if !parentReach.Has(r) {
				errs = append(errs, fmt.Errorf("%s: override for %s can never apply", n.pattern, r))
				continue
			}
			if !t.allows(r, target) {
				errs = append(errs, fmt.Errorf("%s: override %s is not reachable for %s", n.pattern, target, r))
			}
		}
	})
	return errs
}

// reachable intersects the allow sets along a chain.
func reachable(chain []*Node) roles.Set {
	out := roles.NewSet(roles.All()...)
	for _, n := range chain {
		for _, r := range out.Roles() {
			if !n.Allows(r) {
				out = out.Without(r)
			}
		}
	}
	return out
}

// allows reports whether p renders a page for r.
func (t *Table) allows(r roles.Role, p string) bool {
	m, ok := t.Match(p)
	if !ok {
		return false
	}
	for _, n := range m.Chain {
		if !n.Allows(r) {
			return false
		}
	}
	return m.Leaf().Page != ""
}

// Walk visits every node depth first in declaration order. chain ends with the
// visited node and must not be retained.
func (t *Table) Walk(fn func(n *Node, chain []*Node)) {
	t.walk(t.root, nil, fn)
}

func (t *Table) walk(n *Node, chain []*Node, fn func(*Node, []*Node)) {
	chain = append(chain[:len(chain):len(chain)], n)
	fn(n, chain)
	for _, c := range n.Children {
		t.walk(c, chain, fn)
	}
}

func (t *Table) collectRoutes() []RouteInfo {
	var out []RouteInfo
	t.walk(t.root, nil, func(n *Node, chain []*Node) {
		if !n.Terminal() {
			return
		}
		reach := reachable(chain)
		info := RouteInfo{
			Pattern: n.pattern,
			Roles:   reach.Roles(),
			AnyRole: n.Roles.IsAny() && reach == roles.NewSet(roles.All()...),
			Page:    n.Page,
			Landing: n.Landing,
			Static:  true,
		}
		for _, c := range chain {
			if c.Layout != "" {
				info.Layouts = append(info.Layouts, c.Layout)
			}
			for _, s := range c.segments {
				if s.kind != segStatic {
					info.Static = false
				}
			}
		}
		if len(n.Redirects) > 0 {
			info.Redirects = make(map[roles.Role]string, len(n.Redirects))
			for r, target := range n.Redirects {
				info.Redirects[r] = target
			}
		}
		out = append(out, info)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Pattern < out[j].Pattern })
	return out
}

// Routes lists every terminal route ordered by pattern.
func (t *Table) Routes() []RouteInfo {
	out := make([]RouteInfo, len(t.routes))
	copy(out, t.routes)
	return out
}

// Root exposes the frozen root node.
func (t *Table) Root() *Node {
	return t.root
}
