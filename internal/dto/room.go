package dto

// ── 教室模块 ──

// RoomListRequest 教室列表查询参数
type RoomListRequest struct {
	PaginationRequest
	Name     string `form:"name"     binding:"omitempty,max=100"`
	Building string `form:"building" binding:"omitempty,max=100"`
}

// RoomResponse 教室信息响应
type RoomResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Building *string `json:"building,omitempty"`
	MapURL   *string `json:"map_url,omitempty"`
}
