package navigation

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gymops/gymops/internal/roles"
)

// MenuItem is one sidebar link.
type MenuItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// MenuSection groups links under a top-level path segment.
type MenuSection struct {
	Label string     `json:"label"`
	Path  string     `json:"path"`
	Items []MenuItem `json:"items"`
}

// BuildMenu lists the static pages role can open, grouped by section, in
// table order. Every entry is confirmed through the evaluator.
func BuildMenu(e *Evaluator, role roles.Role) []MenuSection {
	if e == nil || e.table == nil || !role.Valid() {
		return nil
	}
	sess := Session{Role: role}
	var sections []MenuSection
	index := map[string]int{}

	e.table.walk(e.table.root, nil, func(n *Node, chain []*Node) {
		if n.Page == "" || len(chain) < 2 || hasDynamicSegment(chain) {
			return
		}
		if e.Evaluate(sess, n.pattern).Kind != KindAllow {
			return
		}
		top := chain[1]
		key := top.pattern
		i, ok := index[key]
		if !ok {
			sections = append(sections, MenuSection{Label: nodeLabel(top), Path: top.pattern})
			i = len(sections) - 1
			index[key] = i
		}
		sections[i].Items = append(sections[i].Items, MenuItem{Label: nodeLabel(n), Path: n.pattern})
	})
	return sections
}

func hasDynamicSegment(chain []*Node) bool {
	for _, n := range chain {
		for _, s := range n.segments {
			if s.kind != segStatic {
				return true
			}
		}
	}
	return false
}

func nodeLabel(n *Node) string {
	if n.Title != "" {
		return n.Title
	}
	p := strings.Trim(n.Path, "/")
	if p == "" {
		return "Overview"
	}
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	// Casers keep state, so each call gets its own.
	return cases.Title(language.English).String(strings.ReplaceAll(p, "-", " "))
}
