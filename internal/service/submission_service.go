package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/dto"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/model"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/repository"
	"github.com/VijayVPatil13/Digital-Lab-Records/pkg/metrics"
)

// SubmissionService 提交业务接口
// 每个 (session, student, section) 至多一份提交，学生提交后不可修改或重交
type SubmissionService interface {
	Submit(ctx context.Context, actor Actor, req *dto.SubmitRequest) (*dto.SubmissionResponse, error)
	GetByID(ctx context.Context, actor Actor, submissionID string) (*dto.SubmissionResponse, error)
	ListMine(ctx context.Context, actor Actor, page *dto.PaginationRequest) ([]dto.SubmissionResponse, int64, error)
}

type submissionService struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
	now     Clock
	logger  *zap.Logger
}

// NewSubmissionService 创建 SubmissionService 实例
func NewSubmissionService(repo *repository.Repository, m *metrics.Metrics, clock Clock, logger *zap.Logger) SubmissionService {
	return &submissionService{repo: repo, metrics: m, now: clock, logger: logger}
}

// ────────────────────── Submit ──────────────────────

func (s *submissionService) Submit(ctx context.Context, actor Actor, req *dto.SubmitRequest) (*dto.SubmissionResponse, error) {
	if err := actor.require(model.RoleStudent); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.SubmittedCode) == "" {
		return nil, ErrSubmissionEmpty
	}

	session, err := s.repo.LabSession.GetByID(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询实验课失败", zap.String("session_id", req.SessionID), zap.Error(err))
		return nil, err
	}

	// 1. 必须持有该课程班级的 approved 选课记录
	enrollment, err := s.repo.Enrollment.GetByCourseStudent(ctx, session.CourseID, actor.UserID, session.Section)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询选课记录失败", zap.Error(err))
		return nil, err
	}
	if err != nil || enrollment.Status != model.EnrollmentApproved {
		s.metrics.IncSubmission("not_enrolled")
		return nil, ErrNotEnrolled
	}

	// 2. 提交窗口
	now := s.now()
	switch SubmissionWindow(session, now) {
	case WindowNotStarted:
		s.metrics.IncSubmission("window_closed")
		return nil, ErrSessionNotStarted
	case WindowClosed:
		s.metrics.IncSubmission("window_closed")
		return nil, ErrSessionEnded
	}

	// 3. 唯一性：预检查 + 唯一约束兜底
	if _, err := s.repo.Submission.GetBySessionStudent(ctx, session.SessionID, actor.UserID, session.Section); err == nil {
		s.metrics.IncSubmission("conflict")
		return nil, ErrAlreadySubmitted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询提交失败", zap.Error(err))
		return nil, err
	}

	submission := &model.Submission{
		SessionID:     session.SessionID,
		CourseID:      session.CourseID,
		StudentID:     actor.UserID,
		Section:       session.Section,
		SubmittedCode: req.SubmittedCode,
		SubmittedAt:   now.UTC(),
	}
	if err := s.repo.Submission.Create(ctx, submission); err != nil {
		if repository.IsUniqueViolation(err) {
			s.metrics.IncSubmission("conflict")
			return nil, ErrAlreadySubmitted
		}
		s.logger.Error("创建提交失败", zap.Error(err))
		return nil, err
	}

	s.metrics.IncSubmission("accepted")
	s.logger.Info("提交已接收",
		zap.String("submission_id", submission.SubmissionID),
		zap.String("session_id", session.SessionID),
		zap.String("student_id", actor.UserID),
	)

	submission.Session = session
	resp := toSubmissionResponse(submission, now)
	return &resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *submissionService) GetByID(ctx context.Context, actor Actor, submissionID string) (*dto.SubmissionResponse, error) {
	if err := actor.require(model.RoleFaculty); err != nil {
		return nil, err
	}

	submission, course, err := loadSubmissionWithCourse(ctx, s.repo, s.logger, submissionID)
	if err != nil {
		return nil, err
	}
	if !course.OwnedBy(actor.UserID) {
		return nil, ErrSubmissionNotOwned
	}

	resp := toSubmissionResponse(submission, s.now())
	return &resp, nil
}

// loadSubmissionWithCourse 读取提交及其所属实验课、课程
func loadSubmissionWithCourse(ctx context.Context, repo *repository.Repository, logger *zap.Logger, submissionID string) (*model.Submission, *model.Course, error) {
	submission, err := repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSubmissionNotFound
		}
		logger.Error("查询提交失败", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, nil, err
	}

	if submission.Session == nil || submission.Session.Course == nil {
		session, err := repo.LabSession.GetByID(ctx, submission.SessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, ErrSessionNotFound
			}
			logger.Error("查询实验课失败", zap.String("session_id", submission.SessionID), zap.Error(err))
			return nil, nil, err
		}
		submission.Session = session
	}
	if submission.Session.Course == nil {
		return nil, nil, ErrCourseNotFound
	}
	return submission, submission.Session.Course, nil
}

// ────────────────────── ListMine ──────────────────────

func (s *submissionService) ListMine(ctx context.Context, actor Actor, page *dto.PaginationRequest) ([]dto.SubmissionResponse, int64, error) {
	if err := actor.require(model.RoleStudent); err != nil {
		return nil, 0, err
	}

	submissions, total, err := s.repo.Submission.ListByStudent(ctx, actor.UserID, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("列出学生提交失败", zap.String("student_id", actor.UserID), zap.Error(err))
		return nil, 0, err
	}

	now := s.now()
	result := make([]dto.SubmissionResponse, 0, len(submissions))
	for i := range submissions {
		result = append(result, toSubmissionResponse(&submissions[i], now))
	}
	return result, total, nil
}
