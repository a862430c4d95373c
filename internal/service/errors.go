package service

import (
	"errors"

	apperr "github.com/VijayVPatil13/Digital-Lab-Records/pkg/errors"
)

// ── 通用 ──

var (
	// ErrRoleForbidden 当前角色无权执行该操作
	ErrRoleForbidden = apperr.Forbidden(10003, "Access denied for this role.")
)

// ── 认证模块（由 AuthHandler 映射为 401/409/403） ──

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = apperr.Conflict(11001, "An account with this email already exists.")
	ErrAdminRegistration  = apperr.Forbidden(11002, "Only an administrator can create administrator accounts.")
)

// ── 课程模块 ──

var (
	ErrCourseNotFound  = apperr.NotFound(12001, "Course not found.")
	ErrCourseExists    = apperr.Conflict(12002, "A course with this code and section already exists.")
	ErrCourseInvalid   = apperr.Validation(12003, "Course name and code are required.")
	ErrCourseNotOwned  = apperr.Forbidden(12004, "You are not the instructor of this course.")
	ErrFacultyNotFound = apperr.Validation(12005, "The assigned faculty member does not exist.")
)

// ── 选课模块 ──

var (
	ErrAlreadyEnrolled         = apperr.Conflict(13001, "You are already enrolled in this course.")
	ErrEnrollmentPending       = apperr.Conflict(13002, "Your enrollment request is already pending approval.")
	ErrEnrollmentRejected      = apperr.Conflict(13003, "Your enrollment request for this course was rejected.")
	ErrEnrollmentDuplicate     = apperr.Conflict(13004, "An enrollment request for this course already exists.")
	ErrEnrollmentNotFound      = apperr.NotFound(13005, "Enrollment request not found.")
	ErrEnrollmentNotOwned      = apperr.Forbidden(13006, "Not authorized to update this enrollment request.")
	ErrEnrollmentStatusInvalid = apperr.Validation(13007, "Status must be either approved or rejected.")
	ErrNotEnrolledInCourse     = apperr.Forbidden(13008, "You are not enrolled in this course.")
)

// ── 实验课模块 ──

var (
	ErrSessionNotFound        = apperr.NotFound(14001, "Lab session not found.")
	ErrSessionWindowInvalid   = apperr.Validation(14002, "End time must be after start time.")
	ErrSessionMaxMarksInvalid = apperr.Validation(14003, "Max marks must be a positive number.")
	ErrSessionNotOwned        = apperr.Forbidden(14004, "Not authorized to manage this lab session.")
	ErrSessionTitleRequired   = apperr.Validation(14005, "Session title is required.")
	ErrAttendanceNotInRoster  = apperr.Validation(14006, "Student is not part of this session's attendance list.")
)

// ── 提交模块 ──

var (
	ErrNotEnrolled        = apperr.Forbidden(15001, "You are not enrolled in this course section.")
	ErrSessionNotStarted  = apperr.Forbidden(15002, "This lab session has not started yet.")
	ErrSessionEnded       = apperr.Forbidden(15003, "This lab session has ended. Submissions are no longer accepted.")
	ErrAlreadySubmitted   = apperr.Conflict(15004, "You have already submitted for this session.")
	ErrSubmissionNotFound = apperr.NotFound(15005, "Submission not found.")
	ErrSubmissionNotOwned = apperr.Forbidden(15006, "Not authorized to view this submission.")
	ErrSubmissionEmpty    = apperr.Validation(15007, "Submitted code must not be empty.")
)

// ── 评分模块 ──

var (
	ErrMarksOutOfRange = apperr.Validation(16001, "Marks are out of range.")
	ErrGradeNotOwned   = apperr.Forbidden(16002, "Not authorized to grade this submission.")
	ErrReviewNotOwned  = apperr.Forbidden(16003, "Not authorized to review this session.")
)

// ── 导出模块 ──

var (
	ErrExportGenerateFail = errors.New("failed to generate export file")
)
