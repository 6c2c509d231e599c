package schema

import (
	"bytes"
	"encoding/json"
)

// Document 保持插入顺序的 JSON 对象，用于按结构顺序输出报名数据。
// 同名键重复写入时保留首次出现的位置并覆盖值。
type Document struct {
	keys   []string
	values map[string]interface{}
}

// NewDocument 创建空文档
func NewDocument() *Document {
	return &Document{values: make(map[string]interface{})}
}

// Set 写入键值
func (d *Document) Set(key string, value interface{}) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Get 读取键值
func (d *Document) Get(key string) (interface{}, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Keys 按插入顺序返回全部键
func (d *Document) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Len 键数量
func (d *Document) Len() int { return len(d.keys) }

// MarshalJSON 按插入顺序输出 JSON 对象
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(d.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
