package service

import (
	"time"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/dto"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/model"
)

// ── Model → DTO 转换 ──

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toUserResponse(u *model.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:              u.UserID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		FullName:        u.FullName(),
		Email:           u.Email,
		Role:            u.Role,
		EnrolledCourses: []string(u.EnrolledCourses),
	}
	if resp.EnrolledCourses == nil {
		resp.EnrolledCourses = []string{}
	}
	if u.USN != nil {
		resp.USN = *u.USN
	}
	return resp
}

func toUserBrief(u *model.User) *dto.UserBrief {
	if u == nil {
		return nil
	}
	b := &dto.UserBrief{ID: u.UserID, Name: u.FullName(), Email: u.Email}
	if u.USN != nil {
		b.USN = *u.USN
	}
	return b
}

func toCourseBrief(c *model.Course) *dto.CourseBrief {
	if c == nil {
		return nil
	}
	return &dto.CourseBrief{ID: c.CourseID, Name: c.Name, Code: c.Code, Section: c.Section}
}

func toCourseResponse(c *model.Course) dto.CourseResponse {
	resp := dto.CourseResponse{
		ID:          c.CourseID,
		Name:        c.Name,
		Code:        c.Code,
		Section:     c.Section,
		Description: c.Description,
		FacultyID:   c.FacultyID,
		Roster:      []string(c.Students),
		CreatedAt:   formatTime(c.CreatedAt),
	}
	if resp.Roster == nil {
		resp.Roster = []string{}
	}
	resp.StudentsCount = len(resp.Roster)
	if c.Faculty != nil {
		resp.InstructorName = c.Faculty.FullName()
	}
	return resp
}

func toEnrollmentResponse(e *model.Enrollment) dto.EnrollmentResponse {
	return dto.EnrollmentResponse{
		ID:          e.EnrollmentID,
		Status:      e.Status,
		Section:     e.Section,
		RequestedAt: formatTime(e.RequestedAt),
		Student:     toUserBrief(e.Student),
		Course:      toCourseBrief(e.Course),
	}
}

func toSessionResponse(s *model.LabSession, now time.Time) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:          s.SessionID,
		CourseID:    s.CourseID,
		Section:     s.Section,
		Title:       s.Title,
		Description: s.Description,
		StartTime:   formatTime(s.StartTime),
		EndTime:     formatTime(s.EndTime),
		MaxMarks:    s.MaxMarks,
		IsOpen:      IsOpenForSubmission(s, now),
		CreatedAt:   formatTime(s.CreatedAt),
	}
	if s.Course != nil {
		resp.CourseCode = s.Course.Code
		resp.CourseName = s.Course.Name
	}
	resp.Attendance = make([]dto.AttendanceResponse, 0, len(s.Attendance))
	for _, a := range s.Attendance {
		resp.Attendance = append(resp.Attendance, dto.AttendanceResponse{StudentID: a.StudentID, Attended: a.Attended})
	}
	return resp
}

func toSubmissionResponse(sub *model.Submission, now time.Time) dto.SubmissionResponse {
	resp := dto.SubmissionResponse{
		ID:            sub.SubmissionID,
		SessionID:     sub.SessionID,
		CourseID:      sub.CourseID,
		StudentID:     sub.StudentID,
		Section:       sub.Section,
		SubmittedCode: sub.SubmittedCode,
		SubmittedAt:   formatTime(sub.SubmittedAt),
		Marks:         sub.Marks,
		Feedback:      sub.Feedback,
		IsReviewed:    sub.IsReviewed,
		Student:       toUserBrief(sub.Student),
	}
	if sub.Session != nil {
		sr := toSessionResponse(sub.Session, now)
		sr.Attendance = nil
		resp.Session = &sr
	}
	return resp
}
