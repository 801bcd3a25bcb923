package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueNestedTraversal(t *testing.T) {
	record := map[string]any{
		"zip": map[string]any{"zipcode": "75001"},
		"location": map[string]any{
			"division": map[string]any{"name": "Texas"},
		},
	}

	v, ok := Value(record, "zip.zipcode")
	require.True(t, ok)
	assert.Equal(t, "75001", v)

	v, ok = Value(record, "location.division.name")
	require.True(t, ok)
	assert.Equal(t, "Texas", v)

	_, ok = Value(record, "location.missing.name")
	assert.False(t, ok)

	_, ok = Value(record, "zip.zipcode.deeper")
	assert.False(t, ok)

	_, ok = Value(nil, "zip")
	assert.False(t, ok)
}

func TestFlatLiteralKey(t *testing.T) {
	record := map[string]any{
		"Column1.content.name": "North Center",
	}

	v, ok := Flat(record, "Column1.content.name")
	require.True(t, ok)
	assert.Equal(t, "North Center", v)

	// Flat never traverses.
	_, ok = Value(record, "Column1.content.name")
	assert.False(t, ok)
}

func TestString(t *testing.T) {
	assert.Equal(t, "", String(nil))
	assert.Equal(t, "x", String("x"))
	assert.Equal(t, "75001", String(float64(75001)))
	assert.Equal(t, "32.77", String(32.77))
	assert.Equal(t, "true", String(true))
	assert.Equal(t, "", String([]any{"no string form"}))
}

func TestNamePrecedence(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"plain string", "Texas", "Texas"},
		{"name field", map[string]any{"name": "Texas"}, "Texas"},
		{"text field", map[string]any{"text": "Texas"}, "Texas"},
		{"name wins over text", map[string]any{"name": "Texas", "text": "Other"}, "Texas"},
		{"data wrapped", map[string]any{"data": map[string]any{"name": "Texas"}}, "Texas"},
		{"data list", map[string]any{"data": []any{map[string]any{"name": "Texas"}}}, "Texas"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Name(tt.value)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestNameUnresolvable(t *testing.T) {
	assert.Nil(t, Name(nil))
	assert.Nil(t, Name(""))
	assert.Nil(t, Name(map[string]any{"other": "x"}))
	assert.Nil(t, Name(map[string]any{"data": []any{}}))
	assert.Nil(t, Name(42))

	assert.Equal(t, "fallback", NameOr(nil, "fallback"))
}
