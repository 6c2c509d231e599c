package schema

import "csa-reg/internal/model"

// Node 展开后的节点，Parent 为父节点在返回切片中的下标（顶层为 -1）
type Node struct {
	Parent       int
	Ordinal      int
	Title        string
	Type         string
	Unique       bool
	Required     bool
	DefaultValue string
	Description  string
	Tip          string
	Extension    string
	Cases        []string
	Range        []string
}

// Build 将嵌套结构描述展开为先序排列的扁平节点列表。
// 父节点总在子节点之前；Ordinal 为节点在其直接兄弟序列中的下标（从 0 开始），与深度无关。
// 使用显式栈展开，调用方按返回顺序逐个持久化即可保证子节点引用的父节点已存在。
func Build(items []Item) []Node {
	type frame struct {
		items  []Item
		parent int
		next   int
	}

	var nodes []Node
	stack := []frame{{items: items, parent: -1}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.items) {
			stack = stack[:len(stack)-1]
			continue
		}

		it := top.items[top.next]
		ordinal := top.next
		parent := top.parent
		top.next++

		nodes = append(nodes, newNode(&it, parent, ordinal))

		if it.IsGroup() && len(it.SubItem) > 0 {
			// append 可能使 top 失效，之后不再使用
			stack = append(stack, frame{items: it.SubItem, parent: len(nodes) - 1})
		}
	}

	return nodes
}

func newNode(it *Item, parent, ordinal int) Node {
	n := Node{
		Parent:      parent,
		Ordinal:     ordinal,
		Title:       it.Name,
		Type:        it.Type,
		Unique:      it.Unique,
		Required:    it.Require,
		Description: it.Description,
		Tip:         it.Tip,
		Extension:   it.Extension,
	}
	if it.DefaultValue != nil {
		n.DefaultValue = *it.DefaultValue
	}
	if it.Case != nil {
		n.Cases = append([]string(nil), it.Case...)
	}
	if it.Range != nil {
		n.Range = append([]string(nil), it.Range...)
	}
	return n
}

// Model 转换为待持久化的模型；BelongsTo 由调用方在父节点落库后填入
func (n *Node) Model(activityID int64) model.SchemaNode {
	m := model.SchemaNode{
		ActivityID:   activityID,
		Title:        n.Title,
		Type:         n.Type,
		IsUnique:     model.FlagOf(n.Unique),
		IsRequired:   model.FlagOf(n.Required),
		DefaultValue: n.DefaultValue,
		Description:  n.Description,
		Tips:         n.Tip,
		Extension:    n.Extension,
		IndexNumber:  n.Ordinal,
	}
	if n.Cases != nil {
		m.Cases = model.CommaList(n.Cases)
	}
	if n.Range != nil {
		m.Ranges = model.CommaList(n.Range)
	}
	return m
}
