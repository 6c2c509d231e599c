package model

// Admin 管理员表，对应 admins
type Admin struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"         json:"id"`
	Name         string `gorm:"type:varchar(64);not null;unique" json:"name"`
	PasswordHash string `gorm:"type:varchar(255);not null"       json:"-"`
	BaseModel
}

// TableName 指定表名
func (Admin) TableName() string { return "admins" }
