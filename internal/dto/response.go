package dto

// ReasonResponse 以 reason 表达业务拒绝的响应，成功时 reason 为空字符串
type ReasonResponse struct {
	Reason string `json:"reason"`
}
