package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/dto"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/model"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/repository"
)

// ── 提交窗口 ──

// WindowState 实验课提交窗口相对某一时刻的状态
type WindowState int

const (
	WindowNotStarted WindowState = iota
	WindowOpen
	WindowClosed
)

// SubmissionWindow 返回 now 所处的窗口状态；[StartTime, EndTime] 两端均闭合
// 判断提交窗口的唯一入口，其他代码不得自行比较时间
func SubmissionWindow(session *model.LabSession, now time.Time) WindowState {
	switch {
	case now.Before(session.StartTime):
		return WindowNotStarted
	case now.After(session.EndTime):
		return WindowClosed
	default:
		return WindowOpen
	}
}

// IsOpenForSubmission startTime ≤ now ≤ endTime
func IsOpenForSubmission(session *model.LabSession, now time.Time) bool {
	return SubmissionWindow(session, now) == WindowOpen
}

// SessionService 实验课业务接口
type SessionService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	ListByCourse(ctx context.Context, actor Actor, code, section string) (*dto.CourseSessionsResponse, error)
	MarkAttendance(ctx context.Context, actor Actor, sessionID string, req *dto.MarkAttendanceRequest) (*dto.SessionResponse, error)
	// ListForStudent 学生视角：课程班级下的实验课及本人提交状态
	ListForStudent(ctx context.Context, actor Actor, code, section string) ([]dto.StudentSessionResponse, error)
}

type sessionService struct {
	repo   *repository.Repository
	now    Clock
	logger *zap.Logger
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(repo *repository.Repository, clock Clock, logger *zap.Logger) SessionService {
	return &sessionService{repo: repo, now: clock, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *sessionService) Create(ctx context.Context, actor Actor, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	if err := actor.require(model.RoleFaculty); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrSessionTitleRequired
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrSessionWindowInvalid
	}
	if req.MaxMarks <= 0 {
		return nil, ErrSessionMaxMarksInvalid
	}

	course, err := findCourse(ctx, s.repo, s.logger, req.CourseCode, req.Section)
	if err != nil {
		return nil, err
	}
	if !course.OwnedBy(actor.UserID) {
		return nil, ErrCourseNotOwned
	}

	// 出勤快照：创建时刻该班级已批准的学生
	roster, err := s.repo.Enrollment.ListApprovedByCourse(ctx, course.CourseID, course.Section)
	if err != nil {
		s.logger.Error("查询已批准名单失败", zap.String("course_id", course.CourseID), zap.Error(err))
		return nil, err
	}
	attendance := make([]model.AttendanceEntry, 0, len(roster))
	for _, e := range roster {
		attendance = append(attendance, model.AttendanceEntry{StudentID: e.StudentID})
	}

	session := &model.LabSession{
		CourseID:    course.CourseID,
		Section:     course.Section,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		MaxMarks:    req.MaxMarks,
		Attendance:  attendance,
	}
	if err := s.repo.LabSession.Create(ctx, session); err != nil {
		s.logger.Error("创建实验课失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("实验课已创建",
		zap.String("session_id", session.SessionID),
		zap.String("course_id", course.CourseID),
		zap.String("section", course.Section),
		zap.Int("snapshot_size", len(attendance)),
	)

	session.Course = course
	resp := toSessionResponse(session, s.now())
	return &resp, nil
}

// ────────────────────── ListByCourse ──────────────────────

func (s *sessionService) ListByCourse(ctx context.Context, actor Actor, code, section string) (*dto.CourseSessionsResponse, error) {
	if err := actor.require(model.RoleFaculty, model.RoleAdmin); err != nil {
		return nil, err
	}

	course, err := findCourse(ctx, s.repo, s.logger, code, section)
	if err != nil {
		return nil, err
	}

	sessions, err := s.repo.LabSession.ListByCourseSection(ctx, course.CourseID, course.Section)
	if err != nil {
		s.logger.Error("列出实验课失败", zap.String("course_id", course.CourseID), zap.Error(err))
		return nil, err
	}

	now := s.now()
	resp := &dto.CourseSessionsResponse{
		Course:   *toCourseBrief(course),
		Sessions: make([]dto.SessionResponse, 0, len(sessions)),
	}
	for i := range sessions {
		sessions[i].Course = course
		resp.Sessions = append(resp.Sessions, toSessionResponse(&sessions[i], now))
	}
	return resp, nil
}

// ────────────────────── MarkAttendance ──────────────────────

// MarkAttendance 仅能修改快照内学生的出勤标记，快照成员本身不可增删
func (s *sessionService) MarkAttendance(ctx context.Context, actor Actor, sessionID string, req *dto.MarkAttendanceRequest) (*dto.SessionResponse, error) {
	if err := actor.require(model.RoleFaculty); err != nil {
		return nil, err
	}

	session, err := s.repo.LabSession.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询实验课失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	if session.Course == nil || !session.Course.OwnedBy(actor.UserID) {
		return nil, ErrSessionNotOwned
	}

	attended := req.Attended != nil && *req.Attended
	marks := make(map[string]bool, len(req.StudentIDs))
	for _, id := range req.StudentIDs {
		if !session.InSnapshot(id) {
			return nil, ErrAttendanceNotInRoster.WithMessage("Student %s is not part of this session's attendance list.", id)
		}
		marks[id] = true
	}

	updated := make([]model.AttendanceEntry, 0, len(session.Attendance))
	for _, a := range session.Attendance {
		if marks[a.StudentID] {
			a.Attended = attended
		}
		updated = append(updated, a)
	}

	if err := s.repo.LabSession.UpdateAttendance(ctx, session.SessionID, updated); err != nil {
		s.logger.Error("更新出勤失败", zap.String("session_id", session.SessionID), zap.Error(err))
		return nil, err
	}
	session.Attendance = updated

	resp := toSessionResponse(session, s.now())
	return &resp, nil
}

// ────────────────────── ListForStudent ──────────────────────

func (s *sessionService) ListForStudent(ctx context.Context, actor Actor, code, section string) ([]dto.StudentSessionResponse, error) {
	if err := actor.require(model.RoleStudent); err != nil {
		return nil, err
	}

	course, err := findCourse(ctx, s.repo, s.logger, code, section)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.repo.Enrollment.GetByCourseStudent(ctx, course.CourseID, actor.UserID, course.Section)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询选课记录失败", zap.Error(err))
		return nil, err
	}
	if err != nil || enrollment.Status != model.EnrollmentApproved {
		return nil, ErrNotEnrolledInCourse
	}

	sessions, err := s.repo.LabSession.ListByCourseSection(ctx, course.CourseID, course.Section)
	if err != nil {
		s.logger.Error("列出实验课失败", zap.String("course_id", course.CourseID), zap.Error(err))
		return nil, err
	}

	now := s.now()
	result := make([]dto.StudentSessionResponse, 0, len(sessions))
	for i := range sessions {
		sessions[i].Course = course
		item := dto.StudentSessionResponse{
			SessionResponse:  toSessionResponse(&sessions[i], now),
			SubmissionStatus: dto.ReviewPending,
		}
		// 学生视角不返回全班出勤
		item.Attendance = nil

		sub, err := s.repo.Submission.GetBySessionStudent(ctx, sessions[i].SessionID, actor.UserID, course.Section)
		switch {
		case err == nil:
			item.SubmissionID = sub.SubmissionID
			item.SubmissionStatus = dto.ReviewSubmitted
			if sub.IsReviewed {
				item.SubmissionStatus = dto.ReviewGraded
				item.Marks = sub.Marks
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			s.logger.Error("查询提交失败", zap.Error(err))
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}
