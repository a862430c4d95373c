package dto

import "time"

// ── 实验课模块 DTO ──

// CreateSessionRequest 创建实验课
type CreateSessionRequest struct {
	CourseCode  string    `json:"courseCode"  binding:"required,coursecode"`
	Section     string    `json:"section"     binding:"required,section"`
	Title       string    `json:"title"       binding:"required,max=200"`
	StartTime   time.Time `json:"startTime"   binding:"required"`
	EndTime     time.Time `json:"endTime"     binding:"required"`
	MaxMarks    int       `json:"maxMarks"    binding:"required,min=1,max=1000"`
	Description string    `json:"description" binding:"omitempty,max=5000"`
}

// MarkAttendanceRequest 标记出勤
type MarkAttendanceRequest struct {
	StudentIDs []string `json:"studentIds" binding:"required,min=1,dive,uuid"`
	Attended   *bool    `json:"attended"   binding:"required"`
}

// AttendanceResponse 出勤记录
type AttendanceResponse struct {
	StudentID string `json:"studentId"`
	Attended  bool   `json:"attended"`
}

// SessionResponse 实验课信息
type SessionResponse struct {
	ID          string               `json:"id"`
	CourseID    string               `json:"courseId"`
	CourseCode  string               `json:"courseCode,omitempty"`
	CourseName  string               `json:"courseName,omitempty"`
	Section     string               `json:"section"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	StartTime   string               `json:"startTime"`
	EndTime     string               `json:"endTime"`
	MaxMarks    int                  `json:"maxMarks"`
	IsOpen      bool                 `json:"isOpen"`
	Attendance  []AttendanceResponse `json:"attendance,omitempty"`
	CreatedAt   string               `json:"createdAt"`
}

// CreateSessionResponse 创建实验课响应
type CreateSessionResponse struct {
	Message string          `json:"message"`
	Session SessionResponse `json:"session"`
}

// CourseSessionsResponse 课程下的实验课列表
type CourseSessionsResponse struct {
	Course   CourseBrief       `json:"course"`
	Sessions []SessionResponse `json:"sessions"`
}

// StudentSessionResponse 学生视角的实验课（含本人提交状态）
type StudentSessionResponse struct {
	SessionResponse
	SubmissionStatus string   `json:"submissionStatus"` // pending | submitted | graded
	SubmissionID     string   `json:"submissionId,omitempty"`
	Marks            *float64 `json:"marks,omitempty"`
}
