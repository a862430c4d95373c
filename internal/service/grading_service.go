package service

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/dto"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/model"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/repository"
	"github.com/VijayVPatil13/Digital-Lab-Records/pkg/metrics"
)

// GradingService 评分与统计业务接口
type GradingService interface {
	Grade(ctx context.Context, actor Actor, submissionID string, req *dto.GradeRequest) (*dto.SubmissionResponse, error)
	ReviewList(ctx context.Context, actor Actor, sessionID string) (*dto.ReviewResponse, error)
	StudentStats(ctx context.Context, actor Actor, code, section string) (*dto.CourseStudentsResponse, error)
}

type gradingService struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
	now     Clock
	logger  *zap.Logger
}

// NewGradingService 创建 GradingService 实例
func NewGradingService(repo *repository.Repository, m *metrics.Metrics, clock Clock, logger *zap.Logger) GradingService {
	return &gradingService{repo: repo, metrics: m, now: clock, logger: logger}
}

// ────────────────────── Grade ──────────────────────

// Grade 越界分数直接拒绝，不修改已有评分
func (s *gradingService) Grade(ctx context.Context, actor Actor, submissionID string, req *dto.GradeRequest) (*dto.SubmissionResponse, error) {
	if err := actor.require(model.RoleFaculty); err != nil {
		return nil, err
	}

	submission, course, err := loadSubmissionWithCourse(ctx, s.repo, s.logger, submissionID)
	if err != nil {
		return nil, err
	}
	if !course.OwnedBy(actor.UserID) {
		return nil, ErrGradeNotOwned
	}

	maxMarks := submission.Session.MaxMarks
	if req.Marks == nil || math.IsNaN(*req.Marks) || *req.Marks < 0 || *req.Marks > float64(maxMarks) {
		s.metrics.IncGrade("out_of_range")
		return nil, ErrMarksOutOfRange.WithMessage("Marks must be between 0 and %d.", maxMarks)
	}

	if err := s.repo.Submission.UpdateGrade(ctx, submission.SubmissionID, *req.Marks, req.Feedback); err != nil {
		s.logger.Error("写入评分失败", zap.String("submission_id", submission.SubmissionID), zap.Error(err))
		return nil, err
	}

	marks := *req.Marks
	submission.Marks = &marks
	submission.Feedback = req.Feedback
	submission.IsReviewed = true

	s.metrics.IncGrade("recorded")
	s.logger.Info("提交已评分",
		zap.String("submission_id", submission.SubmissionID),
		zap.Float64("marks", marks),
		zap.String("faculty_id", actor.UserID),
	)

	resp := toSubmissionResponse(submission, s.now())
	return &resp, nil
}

// ────────────────────── ReviewList ──────────────────────

// ReviewList 以实验课班级的当前已批准名单为行，逐人标注 pending/submitted/graded
func (s *gradingService) ReviewList(ctx context.Context, actor Actor, sessionID string) (*dto.ReviewResponse, error) {
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
		return nil, ErrReviewNotOwned
	}

	roster, err := s.repo.Enrollment.ListApprovedByCourse(ctx, session.CourseID, session.Section)
	if err != nil {
		s.logger.Error("查询已批准名单失败", zap.String("course_id", session.CourseID), zap.Error(err))
		return nil, err
	}
	submissions, err := s.repo.Submission.ListBySession(ctx, session.SessionID)
	if err != nil {
		s.logger.Error("列出实验课提交失败", zap.String("session_id", session.SessionID), zap.Error(err))
		return nil, err
	}

	byStudent := make(map[string]*model.Submission, len(submissions))
	for i := range submissions {
		byStudent[submissions[i].StudentID] = &submissions[i]
	}

	now := s.now()
	resp := &dto.ReviewResponse{
		Session:    toSessionResponse(session, now),
		ReviewList: make([]dto.ReviewRow, 0, len(roster)),
	}
	for _, e := range roster {
		row := dto.ReviewRow{
			Status:   dto.ReviewPending,
			Attended: session.Attended(e.StudentID),
		}
		if b := toUserBrief(e.Student); b != nil {
			row.Student = *b
		} else {
			row.Student = dto.UserBrief{ID: e.StudentID}
		}
		if sub, ok := byStudent[e.StudentID]; ok {
			sr := toSubmissionResponse(sub, now)
			row.Submission = &sr
			row.Status = dto.ReviewSubmitted
			if sub.IsReviewed {
				row.Status = dto.ReviewGraded
			}
		}
		resp.ReviewList = append(resp.ReviewList, row)
	}
	return resp, nil
}

// ────────────────────── StudentStats ──────────────────────

func (s *gradingService) StudentStats(ctx context.Context, actor Actor, code, section string) (*dto.CourseStudentsResponse, error) {
	if err := actor.require(model.RoleFaculty); err != nil {
		return nil, err
	}

	course, err := findCourse(ctx, s.repo, s.logger, code, section)
	if err != nil {
		return nil, err
	}
	if !course.OwnedBy(actor.UserID) {
		return nil, ErrCourseNotOwned
	}

	stats, err := s.courseStats(ctx, course)
	if err != nil {
		return nil, err
	}
	return &dto.CourseStudentsResponse{Course: *toCourseBrief(course), Students: stats}, nil
}

// courseStats 名单中每个学生的提交数与平均分
// 平均分 = sum(marks) / count，未评分按 0 计；count 为 0 时平均分为 0
func (s *gradingService) courseStats(ctx context.Context, course *model.Course) ([]dto.StudentStatResponse, error) {
	roster, err := s.repo.Enrollment.ListApprovedByCourse(ctx, course.CourseID, course.Section)
	if err != nil {
		s.logger.Error("查询已批准名单失败", zap.String("course_id", course.CourseID), zap.Error(err))
		return nil, err
	}
	if len(roster) == 0 {
		return []dto.StudentStatResponse{}, nil
	}

	ids := make([]string, 0, len(roster))
	for _, e := range roster {
		ids = append(ids, e.StudentID)
	}
	rows, err := s.repo.Submission.StatsByCourseSection(ctx, course.CourseID, course.Section, ids)
	if err != nil {
		s.logger.Error("统计学生提交失败", zap.String("course_id", course.CourseID), zap.Error(err))
		return nil, err
	}
	byStudent := make(map[string]model.StudentStat, len(rows))
	for _, r := range rows {
		byStudent[r.StudentID] = r
	}

	result := make([]dto.StudentStatResponse, 0, len(roster))
	for _, e := range roster {
		st := byStudent[e.StudentID]
		item := dto.StudentStatResponse{
			StudentID:            e.StudentID,
			Section:              e.Section,
			AssignmentsSubmitted: st.Count,
		}
		if st.Count > 0 {
			item.AverageMarks = st.TotalMarks / float64(st.Count)
		}
		if e.Student != nil {
			item.Name = e.Student.FullName()
			if e.Student.USN != nil {
				item.USN = *e.Student.USN
			}
		}
		result = append(result, item)
	}
	return result, nil
}
