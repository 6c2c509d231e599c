package model

import "time"

// ActivityStatus 报名活动状态
type ActivityStatus int8

const (
	ActivityDraft  ActivityStatus = 0 // 草稿
	ActivityOpen   ActivityStatus = 1 // 报名中
	ActivityPaused ActivityStatus = 2 // 暂停
	ActivityEnded  ActivityStatus = 3 // 已结束
)

// Valid 状态值是否合法
func (s ActivityStatus) Valid() bool {
	return s >= ActivityDraft && s <= ActivityEnded
}

func (s ActivityStatus) String() string {
	switch s {
	case ActivityDraft:
		return "DRAFT"
	case ActivityOpen:
		return "OPEN"
	case ActivityPaused:
		return "PAUSED"
	case ActivityEnded:
		return "ENDED"
	default:
		return "UNKNOWN"
	}
}

// Activity 报名活动表，对应 activities
type Activity struct {
	ID          int64          `gorm:"primaryKey;autoIncrement"            json:"id"`
	Title       string         `gorm:"type:varchar(200);not null"          json:"title"`
	PublisherID int64          `gorm:"not null"                            json:"publisher_id"`
	StartTime   *time.Time     `json:"start_time,omitempty"`
	EndTime     *time.Time     `json:"end_time,omitempty"`
	Status      ActivityStatus `gorm:"type:smallint;not null;default:0"    json:"status"`
	BaseModel

	// 关联
	Publisher *Admin `gorm:"foreignKey:PublisherID;references:ID" json:"publisher,omitempty"`
}

// TableName 指定表名
func (Activity) TableName() string { return "activities" }
