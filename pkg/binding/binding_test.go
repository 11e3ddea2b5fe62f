package binding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/core"
)

func TestValue(t *testing.T) {
	r := New()
	vars := map[string]any{"count": 3, "user": "Ann", "flags": map[string]any{"beta": true}}

	tests := []struct {
		name string
		raw  string
		want any
	}{
		{"Whole Expression Keeps Type", "{{ state.count }}", 3},
		{"Surrounding Spaces", "  {{state.user}}  ", "Ann"},
		{"Comparison", "{{ state.count > 3 }}", false},
		{"Nested Path", "{{ state.flags.beta }}", true},
		{"Interpolated", "Hello {{ state.user }}!", "Hello Ann!"},
		{"Two Placeholders", "{{ state.user }} has {{ state.count }}", "Ann has 3"},
		{"Missing Variable Is Nil", "{{ state.nothing }}", nil},
		{"Missing Variable Interpolates Empty", "[{{ state.nothing }}]", "[]"},
		{"No Placeholder", "plain text", "plain text"},
		{"Unterminated", "a {{ b", "a {{ b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Value(tt.raw, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValue_Errors(t *testing.T) {
	r := New()

	_, err := r.Value("{{ unknown }}", nil)
	var be *Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "compile", be.Phase)
	assert.Equal(t, "{{ unknown }}", be.Input)

	_, err = r.Value("x {{ state.count + }} y", map[string]any{"count": 1})
	require.Error(t, err)
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "x {{ state.count + }} y", be.Input)

	_, err = r.Eval("   ", nil)
	assert.ErrorIs(t, err, ErrEmptyExpression)
}

func TestProps(t *testing.T) {
	r := New()
	props := core.Props{
		"text":     "Hi {{ state.user }}",
		"disabled": "{{ state.locked }}",
		"size":     12,
		"items":    []any{"{{ state.user }}", "static"},
		"nested":   map[string]any{"label": "{{ state.count * 2 }}"},
	}
	vars := map[string]any{"user": "Bo", "locked": true, "count": 4}

	got, err := r.Props(props, vars)
	require.NoError(t, err)
	assert.Equal(t, "Hi Bo", got["text"])
	assert.Equal(t, true, got["disabled"])
	assert.Equal(t, 12, got["size"])
	assert.Equal(t, []any{"Bo", "static"}, got["items"])
	assert.Equal(t, map[string]any{"label": 8}, got["nested"])

	assert.Equal(t, "Hi {{ state.user }}", props["text"], "input props untouched")

	_, err = r.Props(core.Props{"bad": "{{ nope }}"}, vars)
	assert.ErrorContains(t, err, "prop bad")
}

func TestResolver_CachesPrograms(t *testing.T) {
	r := New()
	for i := 0; i < 3; i++ {
		v, err := r.Value("{{ state.n }}", map[string]any{"n": i})
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	assert.Len(t, r.cache, 1)
}

func TestRefs(t *testing.T) {
	assert.Equal(t, []string{"state.a", "state.b"}, Refs("{{ state.a }}-{{state.b}}-{{ state.a }}"))
	assert.Nil(t, Refs("nothing here"))
	assert.True(t, HasBindings("x {{ y }}"))
	assert.False(t, HasBindings("}} {{"))
}
