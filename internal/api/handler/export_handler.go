package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/SergeiKrivko/BmstuSchedule/internal/dto"
	"github.com/SergeiKrivko/BmstuSchedule/internal/service"
	"github.com/SergeiKrivko/BmstuSchedule/internal/upstream"
	"github.com/SergeiKrivko/BmstuSchedule/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportGroupTimetable 导出组课表为 Excel
// GET /api/v1/groups/:id/schedule.xlsx?from=...&to=...
func (h *ExportHandler) ExportGroupTimetable(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 25001, "组ID不能为空")
		return
	}

	var req dto.ScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 25001, "参数校验失败，from/to 必填")
		return
	}

	buf, filename, err := h.exportSvc.ExportGroupTimetable(c.Request.Context(), id, &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

// ExportGroupCalendar 导出组课表为 iCalendar 订阅文件
// GET /api/v1/groups/:id/schedule.ics?from=...&to=...
func (h *ExportHandler) ExportGroupCalendar(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 25001, "组ID不能为空")
		return
	}

	var req dto.ScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 25001, "参数校验失败，from/to 必填")
		return
	}

	buf, filename, err := h.exportSvc.ExportGroupCalendar(c.Request.Context(), id, &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentTypeICS, buf.Bytes())
}

// handleExportError 统一处理导出模块业务错误
func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 25101, "组不存在")
	case errors.Is(err, service.ErrExportNoOccurrences):
		response.NotFound(c, 25102, "时间窗内没有课程")
	case errors.Is(err, service.ErrInvalidTimeWindow):
		response.BadRequest(c, 25103, "时间窗无效，期望 RFC3339 且 from 不晚于 to")
	case errors.Is(err, service.ErrWindowTooLarge):
		response.BadRequest(c, 25104, "时间窗过大，最长 180 天")
	case errors.Is(err, upstream.ErrUpstreamUnavailable):
		response.BadGateway(c, 25105, "上游教务系统不可用")
	default:
		response.InternalError(c)
	}
}
