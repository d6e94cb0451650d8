// Package navigation decides, for an authenticated role and a requested path,
// whether the console renders a page, redirects elsewhere or reports the path
// as unknown. The policy lives in a declarative route table built once at
// startup; everything else in the package is a pure function over it.
package navigation

import (
	"strings"

	"github.com/gymops/gymops/internal/roles"
)

// ComponentRef names a renderable component in the page registry.
type ComponentRef string

// FallbackPolicy is the section-local redirect target for denials that happen
// below the node declaring it.
type FallbackPolicy struct {
	Default string                `validate:"omitempty,startswith=/"`
	ByRole  map[roles.Role]string `validate:"omitempty,dive,startswith=/"`
}

// For returns the fallback that applies to r.
func (p FallbackPolicy) For(r roles.Role) (string, bool) {
	if target, ok := p.ByRole[r]; ok && target != "" {
		return target, true
	}
	if p.Default != "" {
		return p.Default, true
	}
	return "", false
}

// Declared reports whether the policy has any target at all.
func (p FallbackPolicy) Declared() bool {
	return p.Default != "" || len(p.ByRole) > 0
}

// Node is one entry of the route table. Paths are relative to the parent and
// may span several segments; ":name" captures a parameter and a trailing "*"
// captures the rest of the path. An empty Path declares a section index.
type Node struct {
	Path      string `validate:"excludesall=?#"`
	Title     string
	Roles     roles.Set
	Page      ComponentRef
	Layout    ComponentRef
	Props     map[string]string
	Redirects map[roles.Role]string `validate:"omitempty,dive,startswith=/"`
	Fallback  FallbackPolicy
	Landing   bool
	Children  []*Node

	pattern  string
	segments []segment
	parent   *Node
}

// Pattern is the absolute path pattern of the node, available after Build.
func (n *Node) Pattern() string {
	return n.pattern
}

// Parent returns the enclosing node, nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Allows reports whether r may pass this node.
func (n *Node) Allows(r roles.Role) bool {
	return n.Roles.Has(r)
}

// Terminal reports whether the node can be the target of a navigation.
func (n *Node) Terminal() bool {
	return n.Page != "" || n.Landing
}

type segmentKind uint8

const (
	segStatic segmentKind = iota
	segParam
	segWildcard
)

// rank orders segment kinds by specificity.
func (k segmentKind) rank() int {
	switch k {
	case segStatic:
		return 3
	case segParam:
		return 2
	default:
		return 1
	}
}

type segment struct {
	kind  segmentKind
	value string
}

func parseSegments(p string) []segment {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	parts := strings.Split(p, "/")
	segs := make([]segment, 0, len(parts))
	for _, part := range parts {
		switch {
		case part == "*":
			segs = append(segs, segment{kind: segWildcard, value: "*"})
		case strings.HasPrefix(part, ":"):
			segs = append(segs, segment{kind: segParam, value: strings.TrimPrefix(part, ":")})
		default:
			segs = append(segs, segment{kind: segStatic, value: part})
		}
	}
	return segs
}

// shape is the path with parameter names erased, used for sibling uniqueness.
func shape(segs []segment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		switch s.kind {
		case segParam:
			parts[i] = ":"
		case segWildcard:
			parts[i] = "*"
		default:
			parts[i] = s.value
		}
	}
	return strings.Join(parts, "/")
}

func joinPattern(parent, child string) string {
	child = strings.Trim(child, "/")
	if child == "" {
		if parent == "" {
			return "/"
		}
		return parent
	}
	if parent == "/" || parent == "" {
		return "/" + child
	}
	return parent + "/" + child
}

func cloneTree(n *Node, parent *Node) *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.parent = parent
	if n.Props != nil {
		c.Props = make(map[string]string, len(n.Props))
		for k, v := range n.Props {
			c.Props[k] = v
		}
	}
	if n.Redirects != nil {
		c.Redirects = make(map[roles.Role]string, len(n.Redirects))
		for k, v := range n.Redirects {
			c.Redirects[k] = v
		}
	}
	if n.Fallback.ByRole != nil {
		c.Fallback.ByRole = make(map[roles.Role]string, len(n.Fallback.ByRole))
		for k, v := range n.Fallback.ByRole {
			c.Fallback.ByRole[k] = v
		}
	}
	c.Children = make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		c.Children = append(c.Children, cloneTree(child, &c))
	}
	return &c
}
