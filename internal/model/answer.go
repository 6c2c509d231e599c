package model

// AnswerRow 报名答案表（EAV 行），对应 answer_rows
// 每行记录一个报名者对一个叶子节点的回答；修改以删除 + 插入完成。
type AnswerRow struct {
	ID              int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ActivityID      int64  `gorm:"not null"                 json:"activity_id"`
	ApplicantNumber int    `gorm:"not null"                 json:"applicant_number"`
	NodeID          int64  `gorm:"not null"                 json:"node_id"`
	Value           string `gorm:"type:text;not null"       json:"value"`
}

// TableName 指定表名
func (AnswerRow) TableName() string { return "answer_rows" }
