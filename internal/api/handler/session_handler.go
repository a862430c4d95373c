package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/dto"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/service"
	"github.com/VijayVPatil13/Digital-Lab-Records/pkg/response"
)

// SessionHandler 实验课模块 HTTP 处理器
type SessionHandler struct {
	sessionSvc service.SessionService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(sessionSvc service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// Create 创建实验课
// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.sessionSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, dto.CreateSessionResponse{Message: "Lab session created.", Session: *session})
}

// ListByCourse 课程下的实验课（新建在前）
// GET /api/v1/sessions/course/:code/:section
func (h *SessionHandler) ListByCourse(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.sessionSvc.ListByCourse(c.Request.Context(), actor, c.Param("code"), c.Param("section"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// MarkAttendance 标记出勤
// PUT /api/v1/faculty/sessions/:id/attendance
func (h *SessionHandler) MarkAttendance(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.sessionSvc.MarkAttendance(c.Request.Context(), actor, id, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, session)
}

// ListForStudent 学生视角的课程实验课及本人提交状态
// GET /api/v1/student/courses/:code/:section/sessions
func (h *SessionHandler) ListForStudent(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.sessionSvc.ListForStudent(c.Request.Context(), actor, c.Param("code"), c.Param("section"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, list)
}
