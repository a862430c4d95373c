package handler

import "github.com/VijayVPatil13/Digital-Lab-Records/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Course     *CourseHandler
	Enrollment *EnrollmentHandler
	Session    *SessionHandler
	Submission *SubmissionHandler
	Export     *ExportHandler
	Admin      *AdminHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Course:     NewCourseHandler(svc.Course, svc.Enrollment),
		Enrollment: NewEnrollmentHandler(svc.Enrollment),
		Session:    NewSessionHandler(svc.Session),
		Submission: NewSubmissionHandler(svc.Submission, svc.Grading),
		Export:     NewExportHandler(svc.Export),
		Admin:      NewAdminHandler(svc.Course, svc.Roster),
	}
}
