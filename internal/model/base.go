package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// ── 逗号分隔列表 ──

// CommaList 以逗号拼接存储的字符串列表（选项 cases、区间 ranges），实现 GORM Scanner/Valuer 接口。
// nil 列表存为 NULL；空字符串读回为空列表。
type CommaList []string

// Scan 将 "a,b,c" 解析为 []string。
func (l *CommaList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("CommaList.Scan: unsupported type %T", src)
	}
	if s == "" {
		*l = CommaList{}
		return nil
	}
	*l = strings.Split(s, ",")
	return nil
}

// Value 将 []string 序列化为 "a,b,c"。
func (l CommaList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return strings.Join(l, ","), nil
}

// ── 双值标志位 ──

// Flag 以 0/1 存储的布尔标志（is_unique / is_required）
type Flag int8

const (
	FlagOff Flag = 0
	FlagOn  Flag = 1
)

// FlagOf 由布尔值构造标志
func FlagOf(b bool) Flag {
	if b {
		return FlagOn
	}
	return FlagOff
}

// Bool 标志是否开启
func (f Flag) Bool() bool { return f == FlagOn }

// BaseModel 通用时间戳字段
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
