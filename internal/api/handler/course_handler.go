package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/dto"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/model"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/service"
	"github.com/VijayVPatil13/Digital-Lab-Records/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc     service.CourseService
	enrollmentSvc service.EnrollmentService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService, enrollmentSvc service.EnrollmentService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc, enrollmentSvc: enrollmentSvc}
}

// Create 教师创建课程（归属调用者）
// POST /api/v1/faculty/courses
func (h *CourseHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, dto.CreateCourseResponse{Message: "Course created.", Course: *course})
}

// ListOwned 教师名下课程（含花名册与统计）
// GET /api/v1/faculty/courses
func (h *CourseHandler) ListOwned(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	courses, err := h.courseSvc.ListOwned(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, courses)
}

// ListEnrolled 学生已批准的课程
// GET /api/v1/student/courses
func (h *CourseHandler) ListEnrolled(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	courses, err := h.enrollmentSvc.ListMyCourses(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, courses)
}

// Lookup 按 (code, section) 查询课程；学生视图不返回花名册
// GET /api/v1/courses/:code/:section
func (h *CourseHandler) Lookup(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.FindByCodeSection(c.Request.Context(), c.Param("code"), c.Param("section"))
	if err != nil {
		writeError(c, err)
		return
	}

	if actor.Role == model.RoleStudent {
		course.Roster = nil
		course.Students = nil
	}
	response.OK(c, course)
}
