package dto

// ── 教师模块 ──

// TeacherListRequest 教师列表查询参数
type TeacherListRequest struct {
	PaginationRequest
	LastName string `form:"last_name" binding:"omitempty,max=100"`
}

// TeacherResponse 教师信息响应
type TeacherResponse struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
}
