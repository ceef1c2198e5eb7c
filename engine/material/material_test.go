package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStandardDefaults(t *testing.T) {
	m := NewStandard()
	assert.Equal(t, KindStandard, m.Kind())
	assert.Equal(t, [3]float32{1, 1, 1}, m.Color())
	assert.Equal(t, float32(1), m.Roughness())
	assert.Equal(t, float32(0), m.Metalness())
	assert.Equal(t, float32(1), m.Opacity())
	assert.True(t, m.Visible())
	assert.Equal(t, FrontSide, m.Side())
}

func TestCloneIsIndependent(t *testing.T) {
	src := NewStandard(
		WithName("wall"),
		WithColor([3]float32{0.2, 0.4, 0.6}),
		WithRoughness(0.8),
		WithExtras(map[string]any{"tag": "exterior"}),
	)
	src.MarkDirty()

	clone, ok := src.Clone().(Standard)
	require.True(t, ok)
	assert.NotSame(t, src, clone)
	assert.Equal(t, "wall", clone.Name())
	assert.Equal(t, src.Color(), clone.Color())
	assert.Equal(t, float32(0.8), clone.Roughness())
	assert.Equal(t, src.Version(), clone.Version())
	assert.Equal(t, "exterior", clone.Extras()["tag"])

	clone.SetColor([3]float32{1, 0, 0})
	clone.SetExtra("tag", "interior")
	clone.SetRoughness(0.3)
	clone.MarkDirty()

	assert.Equal(t, [3]float32{0.2, 0.4, 0.6}, src.Color())
	assert.Equal(t, "exterior", src.Extras()["tag"])
	assert.Equal(t, float32(0.8), src.Roughness())
	assert.Equal(t, uint64(1), src.Version())
	assert.Equal(t, uint64(2), clone.Version())
}

func TestBasicCloneKeepsKind(t *testing.T) {
	b := NewBasic(WithName("glass"), WithOpacity(0.5))
	assert.True(t, b.Transparent())

	c := b.Clone()
	assert.Equal(t, KindBasic, c.Kind())
	_, isStandard := c.(Standard)
	assert.False(t, isStandard)
	assert.Equal(t, float32(0.5), c.Opacity())
}

func TestExtrasReturnsCopy(t *testing.T) {
	m := NewBasic(WithExtras(map[string]any{"a": 1}))
	ex := m.Extras()
	ex["a"] = 2
	assert.Equal(t, 1, m.Extras()["a"])
}
