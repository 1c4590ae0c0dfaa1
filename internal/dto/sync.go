package dto

// ── 同步管理模块 ──

// SyncRunResponse 同步运行信息响应
type SyncRunResponse struct {
	ID         string  `json:"id"`
	Status     string  `json:"status"` // in_progress | success | failed
	Comment    *string `json:"comment,omitempty"`
	StartedAt  string  `json:"started_at"`
	FinishedAt *string `json:"finished_at,omitempty"`
}

// SyncRunListRequest 同步运行列表查询参数
type SyncRunListRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}
