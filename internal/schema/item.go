// Package schema 实现报名表的递归结构引擎：
// 校验管理员提交的嵌套结构描述、展开为扁平节点、由扁平节点重建树，并把报名者的 EAV 答案还原成嵌套文档。
package schema

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"csa-reg/internal/model"
	pkgerrors "csa-reg/pkg/errors"
)

// 支持的节点类型
const (
	TypeText   = "text"
	TypeNumber = "number"
	TypeSelect = "select"
	TypeRange  = "range"
	TypeFile   = "file"
	TypeGroup  = model.NodeTypeGroup
)

// ErrInvalidSchema 结构描述不合法
var ErrInvalidSchema = pkgerrors.New(pkgerrors.ErrValidation, "报名表结构无效")

// Item 单个节点的结构描述（管理员提交的 JSON 格式）
// case / range 以逗号拼接存储，故元素本身不得含逗号。
type Item struct {
	Name         string   `json:"name"               validate:"required,max=200"`
	Type         string   `json:"type"               validate:"required,oneof=text number select range file group"`
	Unique       bool     `json:"unique"`
	Require      bool     `json:"require"`
	DefaultValue *string  `json:"defaultValue"`
	Description  string   `json:"description"`
	Tip          string   `json:"tip"`
	Extension    string   `json:"extension,omitempty" validate:"max=100"`
	Case         []string `json:"case,omitempty"      validate:"omitempty,min=1,dive,excludesall=0x2C"`
	Range        []string `json:"range,omitempty"     validate:"omitempty,len=2,dive,excludesall=0x2C"`
	SubItem      []Item   `json:"subItem,omitempty"   validate:"dive"`
}

// IsGroup 是否为分组描述
func (it *Item) IsGroup() bool { return it.Type == TypeGroup }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(itemStructLevel, Item{})
	return v
}

// itemStructLevel 按类型约束字段：
// subItem 当且仅当 type == group 时非空；select 必须有 case；range 必须恰好两个端点；分组不能作为唯一字段
func itemStructLevel(sl validator.StructLevel) {
	it := sl.Current().Interface().(Item)
	if it.IsGroup() && len(it.SubItem) == 0 {
		sl.ReportError(it.SubItem, "SubItem", "subItem", "required_for_group", "")
	}
	if !it.IsGroup() && len(it.SubItem) > 0 {
		sl.ReportError(it.SubItem, "SubItem", "subItem", "group_only", "")
	}
	if it.IsGroup() && it.Unique {
		sl.ReportError(it.Unique, "Unique", "unique", "leaf_only", "")
	}
	if it.Type == TypeSelect && len(it.Case) == 0 {
		sl.ReportError(it.Case, "Case", "case", "required_for_select", "")
	}
	if it.Type == TypeRange && len(it.Range) != 2 {
		sl.ReportError(it.Range, "Range", "range", "required_for_range", "2")
	}
}

// Validate 校验整棵结构描述；失败时返回包装了 ErrInvalidSchema 的错误
func Validate(items []Item) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: 至少需要一个节点", ErrInvalidSchema)
	}

	for i := range items {
		if err := validate.Struct(items[i]); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidSchema, describeValidationErr(err))
		}
	}

	return checkLevels(items)
}

// checkLevels 逐层检查：同一层内名称不能重复（组装时名称即文档键），整棵树最多一个唯一字段
func checkLevels(items []Item) error {
	unique := 0
	stack := [][]Item{items}
	for len(stack) > 0 {
		level := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		seen := make(map[string]bool, len(level))
		for i := range level {
			if seen[level[i].Name] {
				return fmt.Errorf("%w: 同一层级存在重名节点 %q", ErrInvalidSchema, level[i].Name)
			}
			seen[level[i].Name] = true

			if level[i].Unique {
				unique++
			}
			if len(level[i].SubItem) > 0 {
				stack = append(stack, level[i].SubItem)
			}
		}
	}
	if unique > 1 {
		return fmt.Errorf("%w: 最多只能有一个唯一字段，实际 %d 个", ErrInvalidSchema, unique)
	}
	return nil
}

func describeValidationErr(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fmt.Sprintf("%s 不满足 %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s 不满足 %s", fe.Namespace(), fe.Tag())
}
