package dto

import "csa-reg/internal/schema"

// ── 报名者模块 DTO ──

// ApplicantResponse 单个报名者的汇总信息
// Unique 为唯一字段的取值；活动没有唯一字段或报名者未填写时为 null。
type ApplicantResponse struct {
	ID     int              `json:"id"`
	Unique *string          `json:"unique"`
	Data   *schema.Document `json:"data"`
}

// SubmitApplicantRequest 报名提交请求，answers 以节点 ID 为键
type SubmitApplicantRequest struct {
	Answers map[int64]string `json:"answers" binding:"required"`
}

// SubmitApplicantResponse 报名提交成功响应
type SubmitApplicantResponse struct {
	ApplicantNumber int `json:"applicantNumber"`
}
