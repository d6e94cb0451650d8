package navigation

import (
	"path"
	"strings"
)

// Match is the result of resolving a path against the table.
type Match struct {
	Path    string
	Pattern string
	Chain   []*Node
	Params  map[string]string
}

// Leaf is the matched target node.
func (m Match) Leaf() *Node {
	if len(m.Chain) == 0 {
		return nil
	}
	return m.Chain[len(m.Chain)-1]
}

// CleanPath normalises a requested path the way the table compares it. p is
// a decoded URL path: "?" and "#" in it are literal characters.
func CleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

type candidate struct {
	chain  []*Node
	ranks  []int
	params map[string]string
}

// better reports whether a is more specific than b. Segment kinds are compared
// left to right; a longer rank vector wins when one is a prefix of the other.
func (a candidate) better(b candidate) bool {
	for i := 0; i < len(a.ranks) && i < len(b.ranks); i++ {
		if a.ranks[i] != b.ranks[i] {
			return a.ranks[i] > b.ranks[i]
		}
	}
	return len(a.ranks) > len(b.ranks)
}

// Match resolves p against the table. The most specific terminal route wins;
// ties keep declaration order.
func (t *Table) Match(p string) (Match, bool) {
	clean := CleanPath(p)
	segs := splitPath(clean)

	var best *candidate
	var visit func(n *Node, rest []string, chain []*Node, ranks []int, params map[string]string)
	visit = func(n *Node, rest []string, chain []*Node, ranks []int, params map[string]string) {
		chain = append(chain[:len(chain):len(chain)], n)
		if len(rest) == 0 && n.Terminal() {
			c := candidate{chain: chain, ranks: ranks, params: params}
			if best == nil || c.better(*best) {
				best = &c
			}
		}
		for _, child := range n.Children {
			consumed, childRanks, childParams, ok := consume(child.segments, rest)
			if !ok {
				continue
			}
			merged := params
			if len(childParams) > 0 {
				merged = make(map[string]string, len(params)+len(childParams))
				for k, v := range params {
					merged[k] = v
				}
				for k, v := range childParams {
					merged[k] = v
				}
			}
			visit(child, rest[consumed:], chain, append(ranks[:len(ranks):len(ranks)], childRanks...), merged)
		}
	}
	visit(t.root, segs, nil, nil, nil)

	if best == nil {
		return Match{Path: clean}, false
	}
	params := best.params
	if params == nil {
		params = map[string]string{}
	}
	return Match{
		Path:    clean,
		Pattern: best.chain[len(best.chain)-1].pattern,
		Chain:   best.chain,
		Params:  params,
	}, true
}

func consume(segs []segment, rest []string) (int, []int, map[string]string, bool) {
	var ranks []int
	var params map[string]string
	i := 0
	for _, s := range segs {
		if s.kind == segWildcard {
			// A catch-all needs at least one segment so it never shadows an index.
			if i >= len(rest) {
				return 0, nil, nil, false
			}
			if params == nil {
				params = map[string]string{}
			}
			params["*"] = strings.Join(rest[i:], "/")
			ranks = append(ranks, s.kind.rank())
			return len(rest), ranks, params, true
		}
		if i >= len(rest) {
			return 0, nil, nil, false
		}
		switch s.kind {
		case segStatic:
			if rest[i] != s.value {
				return 0, nil, nil, false
			}
		case segParam:
			if params == nil {
				params = map[string]string{}
			}
			params[s.value] = rest[i]
		}
		ranks = append(ranks, s.kind.rank())
		i++
	}
	return i, ranks, params, true
}

func splitPath(clean string) []string {
	trimmed := strings.Trim(clean, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
