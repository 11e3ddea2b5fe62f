// Package binding resolves {{ expression }} placeholders in component props
// against the page variables.
//
// Expressions are evaluated with expr-lang/expr in an environment holding a
// single name, state, bound to the variable map:
//
//	"{{ state.count }}"          -> the value of count, with its own type
//	"Hello {{ state.user }}!"   -> a string with the value interpolated
//	"{{ state.count > 3 }}"      -> a bool
package binding

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/aretw0/lattice/pkg/core"
)

const (
	Prefix = "{{"
	Suffix = "}}"

	// StateName is the identifier the variables are bound to.
	StateName = "state"
)

var ErrEmptyExpression = errors.New("empty expression")

// Error reports a failed placeholder.
type Error struct {
	Input string // the whole string being resolved
	Expr  string // the failing expression
	Phase string // "compile" or "run"
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("binding %q failed during %s: %v", e.Expr, e.Phase, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Resolver evaluates placeholders, caching compiled programs by source.
// It is safe for concurrent use.
type Resolver struct {
	mu    sync.Mutex
	cache map[string]*vm.Program
}

// New returns an empty Resolver.
func New() *Resolver {
	return &Resolver{cache: make(map[string]*vm.Program)}
}

func env(vars map[string]any) map[string]any {
	if vars == nil {
		vars = map[string]any{}
	}
	return map[string]any{StateName: vars}
}

func (r *Resolver) compile(src string, e map[string]any) (*vm.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.cache[src]; ok {
		return p, nil
	}
	p, err := expr.Compile(src, expr.Env(e), expr.AsAny())
	if err != nil {
		return nil, err
	}
	r.cache[src] = p
	return p, nil
}

// Eval evaluates a bare expression (no braces).
func (r *Resolver) Eval(src string, vars map[string]any) (any, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, &Error{Input: src, Phase: "compile", Cause: ErrEmptyExpression}
	}
	e := env(vars)
	p, err := r.compile(src, e)
	if err != nil {
		return nil, &Error{Input: src, Expr: src, Phase: "compile", Cause: err}
	}
	out, err := expr.Run(p, e)
	if err != nil {
		return nil, &Error{Input: src, Expr: src, Phase: "run", Cause: err}
	}
	return out, nil
}

// Value resolves raw. A raw string that is exactly one placeholder yields
// the typed result; text around or between placeholders yields a string;
// a string without placeholders is returned as is.
func (r *Resolver) Value(raw string, vars map[string]any) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, Prefix) && strings.HasSuffix(trimmed, Suffix) {
		inner := trimmed[len(Prefix) : len(trimmed)-len(Suffix)]
		if !strings.Contains(inner, Prefix) && !strings.Contains(inner, Suffix) {
			v, err := r.Eval(inner, vars)
			if err != nil {
				return nil, withInput(err, raw)
			}
			return v, nil
		}
	}
	if !HasBindings(raw) {
		return raw, nil
	}
	return r.Interpolate(raw, vars)
}

// Interpolate replaces every placeholder in raw with the text form of its
// value. An unterminated placeholder is kept verbatim.
func (r *Resolver) Interpolate(raw string, vars map[string]any) (string, error) {
	var b strings.Builder
	rest := raw
	for {
		start := strings.Index(rest, Prefix)
		if start == -1 {
			b.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], Suffix)
		if end == -1 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:start])
		v, err := r.Eval(rest[start+len(Prefix):start+end], vars)
		if err != nil {
			return "", withInput(err, raw)
		}
		b.WriteString(toString(v))
		rest = rest[start+end+len(Suffix):]
	}
	return b.String(), nil
}

// Props returns a copy of props with every string value resolved, looking
// into nested maps and lists. The input is not modified.
func (r *Resolver) Props(props core.Props, vars map[string]any) (core.Props, error) {
	out := make(core.Props, len(props))
	for k, v := range props {
		rv, err := r.resolveAny(v, vars)
		if err != nil {
			return nil, fmt.Errorf("prop %s: %w", k, err)
		}
		out[k] = rv
	}
	return out, nil
}

func (r *Resolver) resolveAny(v any, vars map[string]any) (any, error) {
	switch val := v.(type) {
	case string:
		return r.Value(val, vars)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			rv, err := r.resolveAny(e, vars)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			rv, err := r.resolveAny(e, vars)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	}
	return v, nil
}

// HasBindings reports whether raw contains a placeholder.
func HasBindings(raw string) bool {
	i := strings.Index(raw, Prefix)
	return i != -1 && strings.Contains(raw[i:], Suffix)
}

// Refs lists the distinct expressions referenced by raw, in order.
func Refs(raw string) []string {
	var refs []string
	seen := map[string]bool{}
	rest := raw
	for {
		start := strings.Index(rest, Prefix)
		if start == -1 {
			return refs
		}
		end := strings.Index(rest[start:], Suffix)
		if end == -1 {
			return refs
		}
		ref := strings.TrimSpace(rest[start+len(Prefix) : start+end])
		if ref != "" && !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
		rest = rest[start+end+len(Suffix):]
	}
}

func withInput(err error, raw string) error {
	var be *Error
	if errors.As(err, &be) {
		be.Input = raw
	}
	return err
}

func toString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case []byte:
		return string(val)
	}
	return fmt.Sprintf("%v", v)
}
