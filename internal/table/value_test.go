package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"same string", "x", "x", true},
		{"different string", "x", "y", false},
		{"int and float", 1, 1.0, true},
		{"int64 and uint8", int64(3), uint8(3), true},
		{"string and number", "1", 1, false},
		{"nil and nil", nil, nil, true},
		{"nil and empty string", nil, "", false},
		{"bools", true, true, true},
		{"bool and number", true, 1, false},
		{"NaN", math.NaN(), math.NaN(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "abc", Text("abc"))
	assert.Equal(t, "1.5", Text(1.5))
	assert.Equal(t, "42", Text(42))
	assert.Equal(t, "true", Text(true))
}

func TestCompare(t *testing.T) {
	assert.Negative(t, Compare(1, 2))
	assert.Positive(t, Compare("b", "a"))
	assert.Zero(t, Compare(2, 2.0))
	assert.Negative(t, Compare(5, "a"))
	assert.Positive(t, Compare(nil, "a"))
	assert.Negative(t, Compare(false, true))
}

func TestOrderedMapKeepsFirstPosition(t *testing.T) {
	m := NewOrderedMap[string, int]()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("b", 3)

	assert.Equal(t, []string{"b", "a"}, m.Keys())
	v, ok := m.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, m.Len())
	assert.False(t, m.Has("c"))

	var seen []string
	m.Each(func(k string, _ int) { seen = append(seen, k) })
	assert.Equal(t, []string{"b", "a"}, seen)
}
