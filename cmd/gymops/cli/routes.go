// Package cli holds the operational helpers behind the gymops-routes tool.
package cli

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/gymops/gymops/internal/console"
	"github.com/gymops/gymops/internal/navigation"
	"github.com/gymops/gymops/internal/roles"
)

// RoutesCLI inspects the console route table.
type RoutesCLI struct {
	table     *navigation.Table
	registry  *console.Registry
	evaluator *navigation.Evaluator
}

// NewRoutesCLI builds the console table the same way the server does.
func NewRoutesCLI(loginPath string) (*RoutesCLI, error) {
	registry, err := console.NewRegistry(console.DefaultComponents()...)
	if err != nil {
		return nil, err
	}
	table, err := console.NewTable(registry)
	if err != nil {
		return nil, err
	}
	var opts []navigation.EvaluatorOption
	if loginPath != "" {
		opts = append(opts, navigation.WithLoginPath(loginPath))
	}
	return &RoutesCLI{table: table, registry: registry, evaluator: navigation.NewEvaluator(table, opts...)}, nil
}

// Dump writes the route matrix as YAML. A non-empty role keeps only the
// routes that role may open.
func (c *RoutesCLI) Dump(w io.Writer, role string) error {
	routes := c.table.Routes()
	if role != "" {
		r, err := roles.Parse(role)
		if err != nil {
			return err
		}
		kept := routes[:0:0]
		for _, route := range routes {
			for _, allowed := range route.Roles {
				if allowed == r {
					kept = append(kept, route)
					break
				}
			}
		}
		routes = kept
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(routes); err != nil {
		return err
	}
	return enc.Close()
}

// CheckReport summarises a table check.
type CheckReport struct {
	Routes     int      `yaml:"routes"`
	Components int      `yaml:"components"`
	Problems   []string `yaml:"problems,omitempty"`
}

// ErrCheckFailed is returned when Check finds a problem.
var ErrCheckFailed = errors.New("routes: check failed")

// Check evaluates every route for every role and confirms that each redirect
// settles on a page in one hop and that every allowed page composes.
func (c *RoutesCLI) Check(w io.Writer) error {
	composer := navigation.NewComposer(c.registry)
	report := CheckReport{Routes: len(c.table.Routes()), Components: len(c.registry.Names())}
	for _, r := range roles.All() {
		sess := navigation.Session{Role: r}
		for _, route := range c.table.Routes() {
			p := SamplePath(route.Pattern)
			d := c.evaluator.Evaluate(sess, p)
			switch d.Kind {
			case navigation.KindAllow:
				if _, err := composer.Compose(d, r); err != nil {
					report.Problems = append(report.Problems, fmt.Sprintf("%s %s: %v", r, p, err))
				}
			case navigation.KindRedirect:
				if next := c.evaluator.Evaluate(sess, d.Target()); next.Kind != navigation.KindAllow {
					report.Problems = append(report.Problems, fmt.Sprintf("%s %s: redirect to %s ends in %s", r, p, d.Target(), next.Kind))
				}
			default:
				report.Problems = append(report.Problems, fmt.Sprintf("%s %s: evaluated to %s", r, p, d.Kind))
			}
		}
	}
	if err := yaml.NewEncoder(w).Encode(report); err != nil {
		return err
	}
	if len(report.Problems) > 0 {
		return fmt.Errorf("%w: %d problem(s)", ErrCheckFailed, len(report.Problems))
	}
	return nil
}

// Explanation is the YAML shape printed by Explain.
type Explanation struct {
	Role      string            `yaml:"role"`
	Path      string            `yaml:"path"`
	Decision  string            `yaml:"decision"`
	Pattern   string            `yaml:"pattern,omitempty"`
	Params    map[string]string `yaml:"params,omitempty"`
	Layouts   []string          `yaml:"layouts,omitempty,flow"`
	Component string            `yaml:"component,omitempty"`
	Target    string            `yaml:"target,omitempty"`
	Class     string            `yaml:"class,omitempty"`
	Reason    string            `yaml:"reason,omitempty"`
}

// Explain evaluates one path for one role. The role is used as given, so a
// misspelt role shows the fail-closed answer.
func (c *RoutesCLI) Explain(w io.Writer, role, p string) error {
	sess := navigation.Session{Role: roles.Role(role)}
	d := c.evaluator.Evaluate(sess, p)
	out := Explanation{Role: role, Path: d.Path, Decision: d.Kind.String(), Pattern: d.Match.Pattern}
	switch d.Kind {
	case navigation.KindAllow:
		comp, err := navigation.NewComposer(c.registry).Compose(d, sess.Role)
		if err != nil {
			return err
		}
		out.Params = comp.Params
		out.Component = string(comp.Page().Component)
		for _, l := range comp.Layouts() {
			out.Layouts = append(out.Layouts, string(l.Component))
		}
	case navigation.KindRedirect:
		out.Target = d.Redirect.Target
		out.Class = d.Redirect.Class.String()
		out.Reason = d.Redirect.Reason.String()
	}
	return yaml.NewEncoder(w).Encode(out)
}
