package navigation

import (
	"errors"
	"fmt"

	"github.com/gymops/gymops/internal/roles"
)

var (
	// ErrNotAllowed is returned when composing anything but an Allow decision.
	ErrNotAllowed = errors.New("navigation: decision does not allow rendering")
	// ErrMissingProp is returned when a component declares a prop nothing supplies.
	ErrMissingProp = errors.New("navigation: missing component prop")
	// ErrUnknownComponent is returned for references absent from the registry.
	ErrUnknownComponent = errors.New("navigation: unknown component")
)

// PropRole is supplied to every component that declares it.
const PropRole = "role"

// PropDeclarer exposes which props a component expects.
type PropDeclarer interface {
	Props(ref ComponentRef) ([]string, bool)
}

// Layer is one level of the render tree.
type Layer struct {
	Component ComponentRef
	Props     map[string]string
	Layout    bool
}

// Composition is the render tree for an allowed navigation, outermost layout
// first and the page last.
type Composition struct {
	Path    string
	Pattern string
	Role    roles.Role
	Params  map[string]string
	Layers  []Layer
}

// Page returns the innermost layer.
func (c Composition) Page() Layer {
	if len(c.Layers) == 0 {
		return Layer{}
	}
	return c.Layers[len(c.Layers)-1]
}

// Layouts returns the wrapping layers, outermost first.
func (c Composition) Layouts() []Layer {
	if len(c.Layers) == 0 {
		return nil
	}
	return c.Layers[:len(c.Layers)-1]
}

// Composer turns Allow decisions into render trees. Access has already been
// settled by the Evaluator and is not checked again here.
type Composer struct {
	components PropDeclarer
}

// NewComposer builds a Composer over a component registry.
func NewComposer(components PropDeclarer) *Composer {
	return &Composer{components: components}
}

// Compose wraps the matched page in its ancestors' layouts.
func (c *Composer) Compose(d Decision, role roles.Role) (Composition, error) {
	if d.Kind != KindAllow || len(d.Match.Chain) == 0 {
		return Composition{}, ErrNotAllowed
	}

	available := map[string]string{PropRole: string(role)}
	out := Composition{
		Path:    d.Path,
		Pattern: d.Match.Pattern,
		Role:    role,
		Params:  d.Match.Params,
	}
	leaf := d.Match.Leaf()
	for _, n := range d.Match.Chain {
		for k, v := range n.Props {
			available[k] = v
		}
		for _, s := range n.segments {
			if s.kind == segStatic {
				continue
			}
			if v, ok := d.Match.Params[s.value]; ok {
				available[s.value] = v
			}
		}
		if n.Layout != "" {
			layer, err := c.layer(n.Layout, available, true)
			if err != nil {
				return Composition{}, fmt.Errorf("%s: %w", n.pattern, err)
			}
			out.Layers = append(out.Layers, layer)
		}
	}
	page, err := c.layer(leaf.Page, available, false)
	if err != nil {
		return Composition{}, fmt.Errorf("%s: %w", leaf.pattern, err)
	}
	out.Layers = append(out.Layers, page)
	return out, nil
}

func (c *Composer) layer(ref ComponentRef, available map[string]string, layout bool) (Layer, error) {
	declared, ok := c.components.Props(ref)
	if !ok {
		return Layer{}, fmt.Errorf("%w: %s", ErrUnknownComponent, ref)
	}
	props := make(map[string]string, len(declared))
	for _, name := range declared {
		v, ok := available[name]
		if !ok {
			return Layer{}, fmt.Errorf("%w: %s needs %q", ErrMissingProp, ref, name)
		}
		props[name] = v
	}
	return Layer{Component: ref, Props: props, Layout: layout}, nil
}
