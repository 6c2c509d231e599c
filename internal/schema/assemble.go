package schema

import "csa-reg/internal/model"

// IndexAnswers 将一个活动的全部答案行整理为 报名序号 → (节点 ID → 值)
func IndexAnswers(rows []model.AnswerRow) map[int]map[int64]string {
	idx := make(map[int]map[int64]string)
	for _, r := range rows {
		m, ok := idx[r.ApplicantNumber]
		if !ok {
			m = make(map[int64]string)
			idx[r.ApplicantNumber] = m
		}
		m[r.NodeID] = r.Value
	}
	return idx
}

// Assemble 按结构树把一个报名者的扁平答案还原为嵌套文档。
// 叶子节点输出 标题 → 值，未作答时为 null；分组节点输出 标题 → 子文档。
// 纯读操作，答案缺失不会报错。
func (t *Tree) Assemble(values map[int64]string) *Document {
	return t.assembleLevel(t.children[-1], values)
}

func (t *Tree) assembleLevel(kids []int, values map[int64]string) *Document {
	doc := NewDocument()
	for _, i := range kids {
		n := &t.nodes[i]
		if n.IsGroup() {
			doc.Set(n.Title, t.assembleLevel(t.children[i], values))
			continue
		}
		if v, ok := values[n.ID]; ok {
			doc.Set(n.Title, v)
		} else {
			doc.Set(n.Title, nil)
		}
	}
	return doc
}

// Describe 由结构树还原嵌套结构描述（Build 的逆过程）
func (t *Tree) Describe() []Item {
	return t.describeLevel(t.children[-1])
}

func (t *Tree) describeLevel(kids []int) []Item {
	items := make([]Item, 0, len(kids))
	for _, i := range kids {
		n := &t.nodes[i]
		it := Item{
			Name:        n.Title,
			Type:        n.Type,
			Unique:      n.IsUnique.Bool(),
			Require:     n.IsRequired.Bool(),
			Description: n.Description,
			Tip:         n.Tips,
			Extension:   n.Extension,
		}
		if n.DefaultValue != "" {
			v := n.DefaultValue
			it.DefaultValue = &v
		}
		if n.Cases != nil {
			it.Case = append([]string(nil), n.Cases...)
		}
		if n.Ranges != nil {
			it.Range = append([]string(nil), n.Ranges...)
		}
		if n.IsGroup() {
			it.SubItem = t.describeLevel(t.children[i])
		}
		items = append(items, it)
	}
	return items
}
