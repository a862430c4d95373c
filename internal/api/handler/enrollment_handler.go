package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/dto"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/model"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/service"
	"github.com/VijayVPatil13/Digital-Lab-Records/pkg/response"
)

// EnrollmentHandler 选课模块 HTTP 处理器
type EnrollmentHandler struct {
	enrollmentSvc service.EnrollmentService
}

// NewEnrollmentHandler 创建 EnrollmentHandler
func NewEnrollmentHandler(enrollmentSvc service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc}
}

// Request 学生提交选课申请
// POST /api/v1/enroll
func (h *EnrollmentHandler) Request(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	enrollment, err := h.enrollmentSvc.Request(c.Request.Context(), actor, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, dto.UpdateEnrollmentResponse{
		Message:    "Enrollment request submitted. Waiting for faculty approval.",
		Enrollment: *enrollment,
	})
}

// ListPending 教师名下课程的待审批申请
// GET /api/v1/enrollment/pending
func (h *EnrollmentHandler) ListPending(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.enrollmentSvc.ListPending(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, list)
}

// SetStatus 审批或拒绝单个申请
// PUT /api/v1/enrollment/:id
func (h *EnrollmentHandler) SetStatus(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	enrollment, err := h.enrollmentSvc.SetStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	msg := "Enrollment rejected."
	if req.Status == model.EnrollmentApproved {
		msg = "Enrollment approved."
	}
	response.OK(c, dto.UpdateEnrollmentResponse{Message: msg, Enrollment: *enrollment})
}

// ApproveAll 批量通过全部待审批申请
// POST /api/v1/enrollment/approve-all
func (h *EnrollmentHandler) ApproveAll(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.enrollmentSvc.ApproveAll(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}
