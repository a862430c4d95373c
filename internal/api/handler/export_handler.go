package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/service"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportStudentStats 导出课程学生统计表
// GET /api/v1/faculty/courses/:code/:section/students/export
func (h *ExportHandler) ExportStudentStats(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportStudentStats(c.Request.Context(), actor, c.Param("code"), c.Param("section"))
	if err != nil {
		writeError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// StudentCalendar 学生已选课程的实验课日历
// GET /api/v1/student/sessions/calendar.ics
func (h *ExportHandler) StudentCalendar(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	buf, err := h.exportSvc.StudentCalendar(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=lab-sessions.ics")
	c.Data(http.StatusOK, icsContentType, buf.Bytes())
}
