package dto

import (
	"time"

	"csa-reg/internal/schema"
)

// ── 报名活动模块 DTO ──

// CreateActivityRequest 创建报名请求
type CreateActivityRequest struct {
	Name      string        `json:"name"      binding:"required,max=200"`
	StartTime *time.Time    `json:"startTime"`
	EndTime   *time.Time    `json:"endTime"`
	Items     []schema.Item `json:"items"     binding:"required"`
}

// AlterStructureRequest 替换报名表结构请求
type AlterStructureRequest struct {
	Items []schema.Item `json:"items" binding:"required"`
}

// SetStatusRequest 设置活动状态请求（0 草稿 / 1 报名中 / 2 暂停 / 3 已结束）
type SetStatusRequest struct {
	Status *int `json:"status" binding:"required"`
}

// CreateActivityResponse 创建成功响应
type CreateActivityResponse struct {
	ID int64 `json:"id"`
}

// ActivityResponse 报名活动信息
type ActivityResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Publisher string  `json:"publisher,omitempty"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Status    int     `json:"status"`
}

// ActivityStructureResponse 报名活动及其结构描述
type ActivityStructureResponse struct {
	ActivityResponse
	Items []schema.Item `json:"items"`
}
