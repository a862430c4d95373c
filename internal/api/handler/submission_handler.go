package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/dto"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/service"
	"github.com/VijayVPatil13/Digital-Lab-Records/pkg/response"
)

// SubmissionHandler 提交与评分模块 HTTP 处理器
type SubmissionHandler struct {
	submissionSvc service.SubmissionService
	gradingSvc    service.GradingService
}

// NewSubmissionHandler 创建 SubmissionHandler
func NewSubmissionHandler(submissionSvc service.SubmissionService, gradingSvc service.GradingService) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc, gradingSvc: gradingSvc}
}

// Submit 学生提交代码
// POST /api/v1/submissions
func (h *SubmissionHandler) Submit(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	sub, err := h.submissionSvc.Submit(c.Request.Context(), actor, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, sub)
}

// GetByID 教师查看单个提交
// GET /api/v1/submissions/id/:id
func (h *SubmissionHandler) GetByID(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	sub, err := h.submissionSvc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, sub)
}

// ListMine 学生本人的提交（分页）
// GET /api/v1/student/submissions?page=1&page_size=20
func (h *SubmissionHandler) ListMine(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		bindError(c, err)
		return
	}

	list, total, err := h.submissionSvc.ListMine(c.Request.Context(), actor, &page)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// Grade 评分
// PUT /api/v1/submissions/grade/:id
func (h *SubmissionHandler) Grade(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	sub, err := h.gradingSvc.Grade(c.Request.Context(), actor, id, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, dto.GradeResponse{Message: "Submission graded.", Submission: *sub})
}

// ReviewList 实验课评阅列表
// GET /api/v1/faculty/review/:sessionId
func (h *SubmissionHandler) ReviewList(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	sessionID, ok := pathUUID(c, "sessionId")
	if !ok {
		return
	}

	result, err := h.gradingSvc.ReviewList(c.Request.Context(), actor, sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// StudentStats 课程花名册及每名学生的提交数与平均分
// GET /api/v1/faculty/courses/:code/:section/students
func (h *SubmissionHandler) StudentStats(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.gradingSvc.StudentStats(c.Request.Context(), actor, c.Param("code"), c.Param("section"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}
