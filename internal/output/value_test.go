package output_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webshell/internal/output"
)

func TestTextStrRoundTrip(t *testing.T) {
	v := output.Text("hello world")
	assert.Equal(t, "hello world", v.Str())
}

func TestArrayItemsRoundTrip(t *testing.T) {
	items := []output.Value{output.Text("a"), output.Text("ab"), output.Text("abc")}
	arr := output.Array(items)
	got := arr.Items()
	require.Len(t, got, len(items))
	for i := range items {
		assert.Equal(t, items[i].Str(), got[i].Str())
	}
}

func TestTextItemsSplitsOnNewline(t *testing.T) {
	v := output.Text("1\n2\n3")
	items := v.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "1", items[0].Str())
	assert.Equal(t, "2", items[1].Str())
	assert.Equal(t, "3", items[2].Str())
}

func TestTextRenderEscapesControlBytes(t *testing.T) {
	v := output.Text("before\x1bafter")
	var sb strings.Builder
	v.Render(&sb)
	assert.NotContains(t, sb.String(), "\x1b")
	assert.Contains(t, sb.String(), "^[")
}

func TestRawRenderPassesThroughVerbatim(t *testing.T) {
	v := output.Raw("\x1b[31mred\x1b[0m")
	var sb strings.Builder
	v.Render(&sb)
	assert.Equal(t, "\x1b[31mred\x1b[0m", sb.String())
}

func TestObjectItemsYieldsSelf(t *testing.T) {
	v := output.Object(42)
	items := v.Items()
	require.Len(t, items, 1)
	assert.Equal(t, v.Str(), items[0].Str())
}

func TestArrayStrJoinsWithNewline(t *testing.T) {
	arr := output.Array([]output.Value{output.Text("a"), output.Text("ab")})
	assert.Equal(t, "a\nab", arr.Str())
}
