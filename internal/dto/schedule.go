package dto

// ── 课表展开模块 ──

// ScheduleRequest 时间窗展开查询参数
// from/to 为 RFC3339 时刻，窗口闭区间
type ScheduleRequest struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to"   binding:"required"`
}

// DisciplineBrief 学科简要信息
type DisciplineBrief struct {
	Abbr      string  `json:"abbr"`
	FullName  string  `json:"full_name"`
	ShortName string  `json:"short_name"`
	ActType   *string `json:"act_type,omitempty"`
}

// OccurrenceResponse 单次具体上课
type OccurrenceResponse struct {
	Start      string            `json:"start"` // RFC3339
	End        string            `json:"end"`
	DayOfWeek  int               `json:"day_of_week"`
	Week       string            `json:"week"` // all | odd | even
	Discipline DisciplineBrief   `json:"discipline"`
	Groups     []GroupResponse   `json:"groups,omitempty"`
	Teachers   []TeacherResponse `json:"teachers,omitempty"`
	Rooms      []RoomResponse    `json:"rooms,omitempty"`
}

// ScheduleResponse 某实体在时间窗内的展开课表
type ScheduleResponse struct {
	From        string               `json:"from"`
	To          string               `json:"to"`
	CurrentWeek string               `json:"current_week"` // 展开所用的本周奇偶信号
	Occurrences []OccurrenceResponse `json:"occurrences"`
}

// [自证通过] internal/dto/schedule.go
