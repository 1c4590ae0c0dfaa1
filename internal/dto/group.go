package dto

// ── 班组模块 ──

// GroupListRequest 组列表查询参数
type GroupListRequest struct {
	PaginationRequest
	Abbr string `form:"abbr" binding:"omitempty,max=50"`
}

// GroupResponse 组信息响应
type GroupResponse struct {
	ID          string `json:"id"`
	Abbr        string `json:"abbr"`
	SemesterNum int    `json:"semester_num"`
	Course      string `json:"course,omitempty"`
	UpdatedAt   string `json:"updated_at"`
}

// [自证通过] internal/dto/group.go
