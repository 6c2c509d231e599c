package schema

import (
	"sort"

	"csa-reg/internal/model"
)

// Tree 由扁平节点重建的结构树。
// 节点保存在 arena 切片中，父子关系以下标表示，不持有相互引用。
type Tree struct {
	nodes    []model.SchemaNode
	index    map[int64]int // 节点 ID → arena 下标
	children map[int][]int // 父节点下标（顶层为 -1）→ 按 IndexNumber 排序的子节点下标
	unique   int
}

// NewTree 由同一活动的全部节点构建结构树。
// 父节点缺失或不是 group 的节点不可达，会被忽略。
func NewTree(nodes []model.SchemaNode) *Tree {
	t := &Tree{
		nodes:    append([]model.SchemaNode(nil), nodes...),
		index:    make(map[int64]int, len(nodes)),
		children: make(map[int][]int),
		unique:   -1,
	}

	for i := range t.nodes {
		t.index[t.nodes[i].ID] = i
	}

	for i := range t.nodes {
		parent := -1
		if p := t.nodes[i].BelongsTo; p != nil {
			pi, ok := t.index[*p]
			if !ok || !t.nodes[pi].IsGroup() {
				continue
			}
			parent = pi
		}
		t.children[parent] = append(t.children[parent], i)
	}

	for parent, kids := range t.children {
		sort.SliceStable(kids, func(a, b int) bool {
			return t.nodes[kids[a]].IndexNumber < t.nodes[kids[b]].IndexNumber
		})
		t.children[parent] = kids
	}

	t.walk(func(i int, _ []string) bool {
		if t.unique < 0 && t.nodes[i].IsUnique.Bool() {
			t.unique = i
		}
		return true
	})

	return t
}

// Unique 被标记为唯一字段的节点（报名者展示键），没有时返回 nil
func (t *Tree) Unique() *model.SchemaNode {
	if t.unique < 0 {
		return nil
	}
	return &t.nodes[t.unique]
}

// Leaf 叶子节点及其自顶向下的标题路径
type Leaf struct {
	Node *model.SchemaNode
	Path []string
}

// Leaves 按先序返回所有可达叶子节点
func (t *Tree) Leaves() []Leaf {
	var leaves []Leaf
	t.walk(func(i int, path []string) bool {
		if !t.nodes[i].IsGroup() {
			leaves = append(leaves, Leaf{
				Node: &t.nodes[i],
				Path: append(append([]string(nil), path...), t.nodes[i].Title),
			})
		}
		return true
	})
	return leaves
}

// Reachable 节点是否能从顶层到达
func (t *Tree) Reachable(id int64) bool {
	found := false
	t.walk(func(i int, _ []string) bool {
		if t.nodes[i].ID == id {
			found = true
			return false
		}
		return true
	})
	return found
}

// walk 按先序遍历可达节点；visit 返回 false 时提前结束
func (t *Tree) walk(visit func(i int, path []string) bool) {
	type frame struct {
		kids []int
		next int
		path []string
	}

	stack := []frame{{kids: t.children[-1]}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.kids) {
			stack = stack[:len(stack)-1]
			continue
		}
		i := top.kids[top.next]
		top.next++
		path := top.path

		if !visit(i, path) {
			return
		}
		if t.nodes[i].IsGroup() {
			childPath := append(append([]string(nil), path...), t.nodes[i].Title)
			stack = append(stack, frame{kids: t.children[i], path: childPath})
		}
	}
}
