package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func sampleItems() []Item {
	return []Item{
		{Name: "Name", Type: TypeText, Unique: true, Require: true},
		{Name: "Info", Type: TypeGroup, SubItem: []Item{
			{Name: "Age", Type: TypeNumber, Range: []string{"0", "120"}},
			{Name: "Gender", Type: TypeSelect, Case: []string{"男", "女"}, DefaultValue: strPtr("男")},
		}},
		{Name: "Photo", Type: TypeFile, Extension: "jpg"},
	}
}

func TestBuild_OrderAndParents(t *testing.T) {
	nodes := Build([]Item{
		{Name: "Name", Type: TypeText},
		{Name: "Info", Type: TypeGroup, SubItem: []Item{{Name: "Age", Type: TypeNumber}}},
	})

	require.Len(t, nodes, 3)

	assert.Equal(t, "Name", nodes[0].Title)
	assert.Equal(t, -1, nodes[0].Parent)
	assert.Equal(t, 0, nodes[0].Ordinal)

	assert.Equal(t, "Info", nodes[1].Title)
	assert.Equal(t, -1, nodes[1].Parent)
	assert.Equal(t, 1, nodes[1].Ordinal)

	assert.Equal(t, "Age", nodes[2].Title)
	assert.Equal(t, 1, nodes[2].Parent, "Age 应挂在 Info 之下")
	assert.Equal(t, 0, nodes[2].Ordinal, "序号按兄弟序列计算，与深度无关")
}

func TestBuild_ParentPrecedesChild(t *testing.T) {
	items := []Item{
		{Name: "A", Type: TypeGroup, SubItem: []Item{
			{Name: "A1", Type: TypeGroup, SubItem: []Item{{Name: "A1x", Type: TypeText}}},
			{Name: "A2", Type: TypeText},
		}},
		{Name: "B", Type: TypeText},
	}
	nodes := Build(items)

	titles := make([]string, len(nodes))
	for i, n := range nodes {
		titles[i] = n.Title
		if n.Parent >= 0 {
			assert.Less(t, n.Parent, i, "父节点必须先于子节点出现")
		}
	}
	assert.Equal(t, []string{"A", "A1", "A1x", "A2", "B"}, titles)
	assert.Equal(t, 1, nodes[3].Ordinal)
	assert.Equal(t, 0, nodes[3].Parent)
}

func TestNodeModel(t *testing.T) {
	nodes := Build(sampleItems())
	m := nodes[3].Model(9)

	assert.Equal(t, int64(9), m.ActivityID)
	assert.Equal(t, "Gender", m.Title)
	assert.Equal(t, "男", m.DefaultValue)
	assert.Equal(t, []string{"男", "女"}, []string(m.Cases))
	assert.Nil(t, m.Ranges)
	assert.Nil(t, m.BelongsTo, "BelongsTo 由调用方填入")
	assert.Equal(t, 1, m.IndexNumber)
	assert.True(t, nodes[0].Model(9).IsUnique.Bool())
}
