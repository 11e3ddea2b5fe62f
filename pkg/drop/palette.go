package drop

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/aretw0/lattice/pkg/core"
)

// Generator produces unique node ids.
type Generator func() string

// UUIDv7 returns a Generator of RFC 9562 version 7 ids.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed prepends prefix to every id produced by gen.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Sequence returns a Generator yielding prefix1, prefix2, ... Useful for
// deterministic tests and scripted sessions.
func Sequence(prefix string) Generator {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}

// Template describes the default props and style of a palette entry.
type Template struct {
	Name  string
	Props core.Props
	Style core.Style
}

// Palette maps component types to the defaults a freshly dropped node gets.
type Palette map[core.ComponentType]Template

// DefaultPalette returns the built-in component palette.
func DefaultPalette() Palette {
	return Palette{
		core.TypeButton: {
			Name:  "Button",
			Props: core.Props{"type": "primary", "children": "Button"},
		},
		core.TypeText: {
			Name:  "Text",
			Props: core.Props{"text": "Text", "fontSize": "14px", "color": "#000000"},
		},
		core.TypeInput: {
			Name:  "Input",
			Props: core.Props{"placeholder": "Please enter..."},
		},
		core.TypeContainer: {
			Name:  "Container",
			Props: core.Props{},
			Style: core.Style{"padding": "20px", "border": "1px dashed #d9d9d9", "minHeight": "100px"},
		},
	}
}

// Types returns the palette types in a stable order.
func (p Palette) Types() []core.ComponentType {
	out := make([]core.ComponentType, 0, len(p))
	for t := range p {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Lookup finds the template for t, ignoring case.
func (p Palette) Lookup(t core.ComponentType) (core.ComponentType, Template, bool) {
	if tpl, ok := p[t]; ok {
		return t, tpl, true
	}
	for k, tpl := range p {
		if strings.EqualFold(string(k), string(t)) {
			return k, tpl, true
		}
	}
	return "", Template{}, false
}

// Factory builds new nodes from a palette.
type Factory struct {
	Palette Palette
	NewID   Generator
}

// DefaultFactory uses DefaultPalette and UUIDv7 ids.
func DefaultFactory() Factory {
	return Factory{Palette: DefaultPalette(), NewID: UUIDv7()}
}

// Node returns a fresh node of type t with the palette defaults. Container
// types always get an empty children list.
func (f Factory) Node(t core.ComponentType) (*core.Node, bool) {
	palette := f.Palette
	if palette == nil {
		palette = DefaultPalette()
	}
	typ, tpl, ok := palette.Lookup(t)
	if !ok {
		return nil, false
	}
	gen := f.NewID
	if gen == nil {
		gen = UUIDv7()
	}

	n := &core.Node{
		ID:    gen(),
		Type:  typ,
		Name:  tpl.Name,
		Props: core.Props{},
	}
	for k, v := range tpl.Props {
		n.Props[k] = v
	}
	if len(tpl.Style) > 0 {
		n.Style = core.Style{}
		for k, v := range tpl.Style {
			n.Style[k] = v
		}
	}
	if typ.IsContainer() {
		n.Children = []*core.Node{}
	}
	return n, true
}
