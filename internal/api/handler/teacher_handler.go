package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/SergeiKrivko/BmstuSchedule/internal/dto"
	"github.com/SergeiKrivko/BmstuSchedule/internal/service"
	"github.com/SergeiKrivko/BmstuSchedule/internal/upstream"
	"github.com/SergeiKrivko/BmstuSchedule/pkg/response"
)

// TeacherHandler 教师模块 HTTP 处理器
type TeacherHandler struct {
	teacherSvc service.TeacherService
}

// NewTeacherHandler 创建 TeacherHandler
func NewTeacherHandler(teacherSvc service.TeacherService) *TeacherHandler {
	return &TeacherHandler{teacherSvc: teacherSvc}
}

// ListTeachers 教师列表（支持按姓氏模糊过滤）
// GET /api/v1/teachers
func (h *TeacherHandler) ListTeachers(c *gin.Context) {
	var req dto.TeacherListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 22001, "参数校验失败")
		return
	}

	teachers, total, err := h.teacherSvc.ListTeachers(c.Request.Context(), &req)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OKPage(c, teachers, total, req.GetPage(), req.GetPageSize())
}

// GetTeacher 获取单个教师
// GET /api/v1/teachers/:id
func (h *TeacherHandler) GetTeacher(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 22001, "教师ID不能为空")
		return
	}

	teacher, err := h.teacherSvc.GetTeacher(c.Request.Context(), id)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, teacher)
}

// GetTeacherSchedule 教师在时间窗内的展开课表
// GET /api/v1/teachers/:id/schedule?from=...&to=...
func (h *TeacherHandler) GetTeacherSchedule(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 22001, "教师ID不能为空")
		return
	}

	var req dto.ScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 22001, "参数校验失败，from/to 必填")
		return
	}

	sched, err := h.teacherSvc.GetTeacherSchedule(c.Request.Context(), id, &req)
	if err != nil {
		h.handleTeacherError(c, err)
		return
	}

	response.OK(c, sched)
}

// handleTeacherError 统一处理教师模块业务错误
func (h *TeacherHandler) handleTeacherError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 22101, "教师不存在")
	case errors.Is(err, service.ErrInvalidTimeWindow):
		response.BadRequest(c, 22102, "时间窗无效，期望 RFC3339 且 from 不晚于 to")
	case errors.Is(err, service.ErrWindowTooLarge):
		response.BadRequest(c, 22103, "时间窗过大，最长 180 天")
	case errors.Is(err, upstream.ErrUpstreamUnavailable):
		response.BadGateway(c, 22104, "上游教务系统不可用")
	default:
		response.InternalError(c)
	}
}
