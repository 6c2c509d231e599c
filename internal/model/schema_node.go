package model

// NodeTypeGroup 分组节点类型，其余类型均为叶子题目
const NodeTypeGroup = "group"

// SchemaNode 报名表结构节点，对应 schema_nodes
// BelongsTo 为空表示顶层节点；非空时指向同一活动内的 group 节点。
type SchemaNode struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"       json:"id"`
	ActivityID   int64     `gorm:"not null;index"                 json:"activity_id"`
	Title        string    `gorm:"type:varchar(200);not null"     json:"title"`
	Type         string    `gorm:"type:varchar(20);not null"      json:"type"`
	IsUnique     Flag      `gorm:"type:smallint;not null"         json:"is_unique"`
	IsRequired   Flag      `gorm:"type:smallint;not null"         json:"is_required"`
	DefaultValue string    `gorm:"type:text;not null;default:''"  json:"default_value"`
	Description  string    `gorm:"type:text;not null;default:''"  json:"description"`
	Tips         string    `gorm:"type:text;not null;default:''"  json:"tips"`
	Extension    string    `gorm:"type:varchar(100);not null"     json:"extension"`
	Cases        CommaList `gorm:"type:text"                      json:"cases,omitempty"`
	Ranges       CommaList `gorm:"type:varchar(200)"              json:"ranges,omitempty"`
	BelongsTo    *int64    `json:"belongs_to,omitempty"`
	IndexNumber  int       `gorm:"not null"                       json:"index_number"`
}

// TableName 指定表名
func (SchemaNode) TableName() string { return "schema_nodes" }

// IsGroup 是否为分组节点
func (n *SchemaNode) IsGroup() bool { return n.Type == NodeTypeGroup }
