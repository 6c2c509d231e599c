package model

import "time"

// ── CSP 审核状态 ──

const (
	AuditStatusUncheck = "STATUS_UNCHECK"
	AuditStatusPermit  = "STATUS_PERMIT"
	AuditStatusReject  = "STATUS_REJECT"
)

// AuditStatusDescription 审核状态的展示文案
func AuditStatusDescription(status string) string {
	switch status {
	case AuditStatusUncheck:
		return "未审核"
	case AuditStatusPermit:
		return "审核通过"
	case AuditStatusReject:
		return "审核驳回"
	default:
		return status
	}
}

// CspFreeInfo CSP 免费资格表，对应 csp_free_infos（由外部流程维护，此处只读）
type CspFreeInfo struct {
	SchoolID  string `gorm:"type:varchar(32);primaryKey"      json:"school_id"`
	FreeCount int    `gorm:"not null;default:0"               json:"free_count"`
	Reason    string `gorm:"type:varchar(500);not null"       json:"reason"`
}

// TableName 指定表名
func (CspFreeInfo) TableName() string { return "csp_free_infos" }

// CspAudit CSP 免费审核申请表，对应 csp_audits
// 仅允许从 STATUS_UNCHECK 变更一次，之后不可再改。
type CspAudit struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"                          json:"id"`
	SchoolID  string    `gorm:"type:varchar(32);not null"                         json:"school_id"`
	Reason    string    `gorm:"type:text;not null"                                json:"reason"`
	Status    string    `gorm:"type:varchar(20);not null;default:'STATUS_UNCHECK'" json:"status"`
	Comment   *string   `gorm:"type:text"                                         json:"comment,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                json:"updated_at"`
}

// TableName 指定表名
func (CspAudit) TableName() string { return "csp_audits" }
