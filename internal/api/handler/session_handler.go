package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medrhouma/Projet-d-integration-sub000/internal/dto"
	"github.com/medrhouma/Projet-d-integration-sub000/internal/service"
	"github.com/medrhouma/Projet-d-integration-sub000/pkg/response"
)

// SessionHandler 课程安排模块 HTTP 处理器
type SessionHandler struct {
	placementSvc service.PlacementService
	viewSvc      service.ScheduleViewService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(placementSvc service.PlacementService, viewSvc service.ScheduleViewService) *SessionHandler {
	return &SessionHandler{placementSvc: placementSvc, viewSvc: viewSvc}
}

// ListSessions 按日期区间与资源过滤列出课程（按日期、开始时间排序）
// GET /api/v1/sessions?from=2025-03-10&to=2025-03-16&group_id=xxx
func (h *SessionHandler) ListSessions(c *gin.Context) {
	var req dto.SessionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.viewSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleSessionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetWeekGrid 周课表网格
// GET /api/v1/sessions/week?week=2025-03-12&group_id=xxx
func (h *SessionHandler) GetWeekGrid(c *gin.Context) {
	var req dto.WeekGridRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	grid, err := h.viewSvc.WeekGrid(c.Request.Context(), &req)
	if err != nil {
		handleSessionError(c, err)
		return
	}

	response.OK(c, grid)
}

// GetSession 获取课程安排详情
// GET /api/v1/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}

	session, err := h.placementSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleSessionError(c, err)
		return
	}

	response.OK(c, session)
}

// CreateSession 新增课程安排（冲突时返回 409 与全部冲突）
// POST /api/v1/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	session, err := h.placementSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleSessionError(c, err)
		return
	}

	response.Created(c, session)
}

// DeleteSession 删除课程安排
// DELETE /api/v1/sessions/:id
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.placementSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		handleSessionError(c, err)
		return
	}

	response.OK(c, nil)
}

// BulkDeleteSessions 批量删除课程安排（全部成功或全部失败）
// POST /api/v1/sessions/bulk-delete
func (h *SessionHandler) BulkDeleteSessions(c *gin.Context) {
	var req dto.BulkDeleteSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.placementSvc.BulkDelete(c.Request.Context(), &req, callerID)
	if err != nil {
		handleSessionError(c, err)
		return
	}

	response.OK(c, result)
}

// ── 内部辅助 ──

func sessionIDParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.BadRequest(c, 10001, "课程安排ID格式无效")
		return "", false
	}
	return id, true
}

// handleSessionError 统一处理课程安排模块业务错误
func handleSessionError(c *gin.Context, err error) {
	var (
		validationErr *service.ValidationError
		conflictErr   *service.PlacementConflictError
		missingErr    *service.MissingSessionsError
	)
	switch {
	case errors.As(err, &validationErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, 17001, "课程安排参数不合法", validationErr.Error())
	case errors.As(err, &conflictErr):
		response.Conflict(c, 17002, "课程安排存在冲突", toConflictResponse(conflictErr))
	case errors.As(err, &missingErr):
		response.ErrorWithData(c, http.StatusNotFound, 17003, "课程安排不存在", gin.H{"missing_ids": missingErr.IDs})
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 17003, "课程安排不存在")
	case errors.Is(err, service.ErrBulkDeleteTooMany):
		response.BadRequest(c, 17004, "批量删除数量超过上限")
	default:
		response.InternalError(c)
	}
}

func toConflictResponse(err *service.PlacementConflictError) dto.PlacementConflictResponse {
	items := make([]dto.ConflictResponse, 0, len(err.Conflicts))
	for _, cf := range err.Conflicts {
		items = append(items, dto.ConflictResponse{
			Kind:      string(cf.Kind),
			SessionID: cf.SessionID,
			Message:   cf.Message,
		})
	}
	return dto.PlacementConflictResponse{Conflicts: items}
}
