package service

import (
	"context"
	"errors"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/dto"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/model"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/repository"
)

// CourseService 课程注册业务接口
// (code, section) 是课程的业务主键；下游流程都经 FindByCodeSection 解析课程
type CourseService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	CreateForFaculty(ctx context.Context, actor Actor, req *dto.AdminCreateCourseRequest) (*dto.CourseResponse, error)
	ListOwned(ctx context.Context, actor Actor) ([]dto.CourseResponse, error)
	FindByCodeSection(ctx context.Context, code, section string) (*dto.CourseResponse, error)
}

// courseStatsProvider 按课程班级计算学生统计（由 GradingService 实现）
type courseStatsProvider interface {
	courseStats(ctx context.Context, course *model.Course) ([]dto.StudentStatResponse, error)
}

type courseService struct {
	repo   *repository.Repository
	stats  courseStatsProvider
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, grading GradingService, logger *zap.Logger) CourseService {
	s := &courseService{repo: repo, logger: logger}
	if p, ok := grading.(courseStatsProvider); ok {
		s.stats = p
	}
	return s
}

// ── 课程代码规范化 ──

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizeSection(section string) string {
	section = strings.ToUpper(strings.TrimSpace(section))
	if section == "" {
		return model.DefaultSection
	}
	return section
}

// findCourse 按 (code, section) 解析课程，不存在时返回 ErrCourseNotFound
func findCourse(ctx context.Context, repo *repository.Repository, logger *zap.Logger, code, section string) (*model.Course, error) {
	course, err := repo.Course.GetByCodeSection(ctx, normalizeCode(code), normalizeSection(section))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		logger.Error("查询课程失败", zap.String("code", code), zap.String("section", section), zap.Error(err))
		return nil, err
	}
	return course, nil
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, actor Actor, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	if err := actor.require(model.RoleFaculty); err != nil {
		return nil, err
	}
	return s.create(ctx, req, actor.UserID)
}

// ────────────────────── CreateForFaculty ──────────────────────

func (s *courseService) CreateForFaculty(ctx context.Context, actor Actor, req *dto.AdminCreateCourseRequest) (*dto.CourseResponse, error) {
	if err := actor.require(model.RoleAdmin); err != nil {
		return nil, err
	}

	faculty, err := s.repo.User.GetByID(ctx, req.FacultyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFacultyNotFound
		}
		s.logger.Error("查询教师失败", zap.String("faculty_id", req.FacultyID), zap.Error(err))
		return nil, err
	}
	if faculty.Role != model.RoleFaculty {
		return nil, ErrFacultyNotFound
	}

	resp, err := s.create(ctx, &req.CreateCourseRequest, faculty.UserID)
	if err != nil {
		return nil, err
	}
	resp.InstructorName = faculty.FullName()
	return resp, nil
}

func (s *courseService) create(ctx context.Context, req *dto.CreateCourseRequest, ownerID string) (*dto.CourseResponse, error) {
	name := strings.TrimSpace(req.Name)
	code := normalizeCode(req.Code)
	section := normalizeSection(req.Section)
	if name == "" || code == "" {
		return nil, ErrCourseInvalid
	}

	// 预检查仅为优化；并发下由唯一约束兜底
	if _, err := s.repo.Course.GetByCodeSection(ctx, code, section); err == nil {
		return nil, ErrCourseExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}

	course := &model.Course{
		Name:        name,
		Code:        code,
		Section:     section,
		Description: strings.TrimSpace(req.Description),
		FacultyID:   ownerID,
		Students:    pq.StringArray{},
	}
	if err := s.repo.Course.Create(ctx, course); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrCourseExists
		}
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("课程已创建",
		zap.String("course_id", course.CourseID),
		zap.String("code", code),
		zap.String("section", section),
		zap.String("faculty_id", ownerID),
	)
	resp := toCourseResponse(course)
	return &resp, nil
}

// ────────────────────── ListOwned ──────────────────────

// ListOwned 教师名下课程，名单规模与学生统计均按选课记录实时计算
func (s *courseService) ListOwned(ctx context.Context, actor Actor) ([]dto.CourseResponse, error) {
	if err := actor.require(model.RoleFaculty); err != nil {
		return nil, err
	}

	courses, err := s.repo.Course.ListByFaculty(ctx, actor.UserID)
	if err != nil {
		s.logger.Error("列出教师课程失败", zap.String("faculty_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		resp := toCourseResponse(&courses[i])
		if s.stats != nil {
			stats, err := s.stats.courseStats(ctx, &courses[i])
			if err != nil {
				return nil, err
			}
			resp.Students = stats
			resp.Roster = make([]string, 0, len(stats))
			for _, st := range stats {
				resp.Roster = append(resp.Roster, st.StudentID)
			}
			resp.StudentsCount = len(stats)
		}
		result = append(result, resp)
	}
	return result, nil
}

// ────────────────────── FindByCodeSection ──────────────────────

func (s *courseService) FindByCodeSection(ctx context.Context, code, section string) (*dto.CourseResponse, error) {
	course, err := findCourse(ctx, s.repo, s.logger, code, section)
	if err != nil {
		return nil, err
	}
	resp := toCourseResponse(course)
	return &resp, nil
}
