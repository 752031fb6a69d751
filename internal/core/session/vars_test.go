package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     Vars
		want     string
	}{
		{
			name:     "single token",
			template: "Hi {{name}}",
			vars:     Vars{"name": "Ana"},
			want:     "Hi Ana",
		},
		{
			name:     "unresolved token becomes empty",
			template: "Hi {{name}}",
			vars:     Vars{},
			want:     "Hi ",
		},
		{
			name:     "whitespace inside braces",
			template: "Hi {{ name }}",
			vars:     Vars{"name": "Ana"},
			want:     "Hi Ana",
		},
		{
			name:     "multiple tokens",
			template: "{{greeting}}, {{name}}!",
			vars:     Vars{"greeting": "Hello", "name": "Ana"},
			want:     "Hello, Ana!",
		},
		{
			name:     "case sensitive names",
			template: "{{Name}}",
			vars:     Vars{"name": "Ana"},
			want:     "",
		},
		{
			name:     "no recursive substitution",
			template: "{{a}}",
			vars:     Vars{"a": "{{b}}", "b": "deep"},
			want:     "{{b}}",
		},
		{
			name:     "no tokens",
			template: "plain text",
			vars:     Vars{"name": "Ana"},
			want:     "plain text",
		},
		{
			name:     "number renders without trailing zero",
			template: "count: {{count}}",
			vars:     Vars{"count": float64(3)},
			want:     "count: 3",
		},
		{
			name:     "bool renders as text",
			template: "vip: {{vip}}",
			vars:     Vars{"vip": true},
			want:     "vip: true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpolate(tt.template, tt.vars))
		})
	}
}

func TestVars_Merge(t *testing.T) {
	v := Vars{"name": "Ana", "color": "red"}
	v.Merge(map[string]any{"color": "blue", "city": "Lisbon"})

	assert.Equal(t, "red", v.String("color"))
	assert.Equal(t, "Lisbon", v.String("city"))
	assert.Equal(t, "Ana", v.String("name"))
}

func TestVars_Clone(t *testing.T) {
	v := Vars{"name": "Ana"}
	c := v.Clone()
	c.Set("name", "Bea")

	assert.Equal(t, "Ana", v.String("name"))
	assert.Equal(t, "Bea", c.String("name"))
}

func TestVars_String(t *testing.T) {
	v := Vars{"n": 42, "f": 1.5, "b": false}

	assert.Equal(t, "42", v.String("n"))
	assert.Equal(t, "1.5", v.String("f"))
	assert.Equal(t, "false", v.String("b"))
	assert.Equal(t, "", v.String("missing"))
}
