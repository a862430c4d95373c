package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/dto"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/service"
	"github.com/VijayVPatil13/Digital-Lab-Records/pkg/response"
)

// AdminHandler 管理员模块 HTTP 处理器
type AdminHandler struct {
	courseSvc service.CourseService
	rosterSvc service.RosterService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(courseSvc service.CourseService, rosterSvc service.RosterService) *AdminHandler {
	return &AdminHandler{courseSvc: courseSvc, rosterSvc: rosterSvc}
}

// CreateCourse 管理员为指定教师创建课程
// POST /api/v1/admin/courses
func (h *AdminHandler) CreateCourse(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AdminCreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	course, err := h.courseSvc.CreateForFaculty(c.Request.Context(), actor, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, dto.CreateCourseResponse{Message: "Course created.", Course: *course})
}

// RepairRoster 由已批准选课重建花名册与选课缓存
// POST /api/v1/admin/roster/repair
func (h *AdminHandler) RepairRoster(c *gin.Context) {
	if _, ok := MustGetActor(c); !ok {
		return
	}

	result, err := h.rosterSvc.Repair(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}
