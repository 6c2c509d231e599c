package dto

// ── CSP 免费审核模块 DTO ──

// AuditGateRequest 设置审核闸门请求
type AuditGateRequest struct {
	Status string `json:"status" binding:"required"`
}

// AuditGateResponse 审核闸门状态
type AuditGateResponse struct {
	Status string `json:"status"`
}

// ReviewAuditRequest 审核请求，result 为 AUDIT_PERMIT 或 AUDIT_REJECT
type ReviewAuditRequest struct {
	Result  string  `json:"result" binding:"required"`
	Comment *string `json:"comment"`
}

// SubmitAuditRequest 学生提交免费申请
type SubmitAuditRequest struct {
	SchoolID string `json:"schoolId" binding:"required,max=32"`
	Reason   string `json:"reason"   binding:"required,max=2000"`
}

// AuditListQuery 审核列表查询参数
type AuditListQuery struct {
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status"`
}

// AuditListItem 审核列表单项
type AuditListItem struct {
	ID       string `json:"id"`
	SchoolID string `json:"schoolId"`
	Reason   string `json:"reason"`
	Status   string `json:"status"`
}

// AuditListResponse 审核分页列表
type AuditListResponse struct {
	TotalPages int             `json:"totalPages"`
	Data       []AuditListItem `json:"data"`
}

// FreeInfoResponse 学生免费资格
type FreeInfoResponse struct {
	FreeCount  string `json:"freeCount"`
	FreeReason string `json:"freeReason"`
}

// StudentAuditItem 学生的单条申请记录
type StudentAuditItem struct {
	SubmitTime string  `json:"submitTime"`
	Reason     string  `json:"reason"`
	Result     string  `json:"result"`
	Comment    *string `json:"comment"`
}

// StudentAuditsResponse 学生申请记录
type StudentAuditsResponse struct {
	Count int                `json:"count"`
	Data  []StudentAuditItem `json:"data"`
}
