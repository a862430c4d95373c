package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/dto"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/model"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/repository"
	"github.com/VijayVPatil13/Digital-Lab-Records/pkg/metrics"
)

// EnrollmentService 选课业务接口
//
// 状态机：pending → approved | rejected；approved 与 rejected 之间可互转。
// enrollments 表是唯一事实来源，courses.students 与 users.enrolled_courses
// 两份缓存在同一事务内随状态变更同步。
type EnrollmentService interface {
	Request(ctx context.Context, actor Actor, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error)
	ListPending(ctx context.Context, actor Actor) ([]dto.EnrollmentResponse, error)
	SetStatus(ctx context.Context, actor Actor, enrollmentID, status string) (*dto.EnrollmentResponse, error)
	ApproveAll(ctx context.Context, actor Actor) (*dto.ApproveAllResponse, error)
	// ListMyCourses 学生已批准的课程
	ListMyCourses(ctx context.Context, actor Actor) ([]dto.CourseResponse, error)
}

type enrollmentService struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(repo *repository.Repository, m *metrics.Metrics, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, metrics: m, logger: logger}
}

// conflictFor 按已存在记录的状态给出冲突提示
func conflictFor(existing *model.Enrollment) error {
	switch existing.Status {
	case model.EnrollmentApproved:
		return ErrAlreadyEnrolled
	case model.EnrollmentPending:
		return ErrEnrollmentPending
	case model.EnrollmentRejected:
		return ErrEnrollmentRejected
	}
	return ErrEnrollmentDuplicate
}

// ────────────────────── Request ──────────────────────

func (s *enrollmentService) Request(ctx context.Context, actor Actor, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error) {
	if err := actor.require(model.RoleStudent); err != nil {
		return nil, err
	}

	course, err := findCourse(ctx, s.repo, s.logger, req.CourseCode, req.Section)
	if err != nil {
		return nil, err
	}

	// 1. 预检查：命中时直接给出精确提示
	existing, err := s.repo.Enrollment.GetByCourseStudent(ctx, course.CourseID, actor.UserID, course.Section)
	if err == nil {
		s.metrics.IncEnrollment("conflict")
		return nil, conflictFor(existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询选课记录失败", zap.Error(err))
		return nil, err
	}

	// 2. 插入；并发请求由唯一约束裁决，冲突后回读已存在记录
	enrollment := &model.Enrollment{
		CourseID:  course.CourseID,
		StudentID: actor.UserID,
		Section:   course.Section,
		Status:    model.EnrollmentPending,
	}
	if err := s.repo.Enrollment.Create(ctx, enrollment); err != nil {
		if !repository.IsUniqueViolation(err) {
			s.logger.Error("创建选课记录失败", zap.Error(err))
			return nil, err
		}
		s.metrics.IncEnrollment("conflict")
		existing, lookupErr := s.repo.Enrollment.GetByCourseStudent(ctx, course.CourseID, actor.UserID, course.Section)
		if lookupErr != nil {
			s.logger.Warn("唯一约束冲突后回读选课记录失败", zap.Error(lookupErr))
			return nil, ErrEnrollmentDuplicate
		}
		return nil, conflictFor(existing)
	}

	s.metrics.IncEnrollment("requested")
	s.logger.Info("选课申请已提交",
		zap.String("enrollment_id", enrollment.EnrollmentID),
		zap.String("course_id", course.CourseID),
		zap.String("student_id", actor.UserID),
	)

	enrollment.Course = course
	resp := toEnrollmentResponse(enrollment)
	return &resp, nil
}

// ────────────────────── ListPending ──────────────────────

func (s *enrollmentService) ListPending(ctx context.Context, actor Actor) ([]dto.EnrollmentResponse, error) {
	if err := actor.require(model.RoleFaculty); err != nil {
		return nil, err
	}

	enrollments, err := s.repo.Enrollment.ListPendingByFaculty(ctx, actor.UserID)
	if err != nil {
		s.logger.Error("列出待审批选课失败", zap.String("faculty_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		result = append(result, toEnrollmentResponse(&enrollments[i]))
	}
	return result, nil
}

// ────────────────────── SetStatus ──────────────────────

func (s *enrollmentService) SetStatus(ctx context.Context, actor Actor, enrollmentID, status string) (*dto.EnrollmentResponse, error) {
	if err := actor.require(model.RoleFaculty); err != nil {
		return nil, err
	}
	if status != model.EnrollmentApproved && status != model.EnrollmentRejected {
		return nil, ErrEnrollmentStatusInvalid
	}

	var result *model.Enrollment
	err := runInTx(ctx, s.repo, func(txRepo *repository.Repository) error {
		var err error
		result, err = s.transition(ctx, txRepo, actor.UserID, enrollmentID, status)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncEnrollment(status)
	resp := toEnrollmentResponse(result)
	return &resp, nil
}

// transition 在事务内锁定选课行、校验归属并同步两份名单缓存
func (s *enrollmentService) transition(ctx context.Context, txRepo *repository.Repository, facultyID, enrollmentID, status string) (*model.Enrollment, error) {
	enrollment, err := txRepo.Enrollment.GetByIDForUpdate(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("锁定选课记录失败", zap.String("enrollment_id", enrollmentID), zap.Error(err))
		return nil, err
	}

	course, err := txRepo.Course.GetByID(ctx, enrollment.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", enrollment.CourseID), zap.Error(err))
		return nil, err
	}
	if !course.OwnedBy(facultyID) {
		return nil, ErrEnrollmentNotOwned
	}
	enrollment.Course = course

	previous := enrollment.Status
	if previous == status {
		return enrollment, nil
	}

	if err := txRepo.Enrollment.UpdateStatus(ctx, enrollment.EnrollmentID, status); err != nil {
		s.logger.Error("更新选课状态失败", zap.Error(err))
		return nil, err
	}
	enrollment.Status = status

	switch {
	case status == model.EnrollmentApproved:
		if err := txRepo.Course.AddStudent(ctx, course.CourseID, enrollment.StudentID); err != nil {
			s.logger.Error("同步课程名单失败", zap.Error(err))
			return nil, err
		}
		if err := txRepo.User.AddEnrolledCourse(ctx, enrollment.StudentID, course.CourseID); err != nil {
			s.logger.Error("同步学生选课缓存失败", zap.Error(err))
			return nil, err
		}
	case previous == model.EnrollmentApproved:
		if err := txRepo.Course.RemoveStudent(ctx, course.CourseID, enrollment.StudentID); err != nil {
			s.logger.Error("同步课程名单失败", zap.Error(err))
			return nil, err
		}
		if err := txRepo.User.RemoveEnrolledCourse(ctx, enrollment.StudentID, course.CourseID); err != nil {
			s.logger.Error("同步学生选课缓存失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("选课状态已变更",
		zap.String("enrollment_id", enrollment.EnrollmentID),
		zap.String("from", previous),
		zap.String("to", status),
	)
	return enrollment, nil
}

// ────────────────────── ApproveAll ──────────────────────

// ApproveAll 逐条批准；单条失败只记录日志，不中断其余记录
func (s *enrollmentService) ApproveAll(ctx context.Context, actor Actor) (*dto.ApproveAllResponse, error) {
	if err := actor.require(model.RoleFaculty); err != nil {
		return nil, err
	}

	pending, err := s.repo.Enrollment.ListPendingByFaculty(ctx, actor.UserID)
	if err != nil {
		s.logger.Error("列出待审批选课失败", zap.String("faculty_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	resp := &dto.ApproveAllResponse{}
	for _, e := range pending {
		if _, err := s.SetStatus(ctx, actor, e.EnrollmentID, model.EnrollmentApproved); err != nil {
			resp.Failed++
			s.logger.Warn("批量批准中单条失败", zap.String("enrollment_id", e.EnrollmentID), zap.Error(err))
			continue
		}
		resp.Count++
	}
	resp.Message = "Pending enrollment requests approved."
	return resp, nil
}

// ────────────────────── ListMyCourses ──────────────────────

func (s *enrollmentService) ListMyCourses(ctx context.Context, actor Actor) ([]dto.CourseResponse, error) {
	if err := actor.require(model.RoleStudent); err != nil {
		return nil, err
	}

	enrollments, err := s.repo.Enrollment.ListApprovedByStudent(ctx, actor.UserID)
	if err != nil {
		s.logger.Error("列出学生课程失败", zap.String("student_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	courseIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		courseIDs = append(courseIDs, e.CourseID)
	}
	counts, err := s.repo.Enrollment.CountApprovedByCourses(ctx, courseIDs)
	if err != nil {
		s.logger.Error("统计课程人数失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Course == nil {
			continue
		}
		resp := toCourseResponse(e.Course)
		// 学生视角不暴露其他同学名单
		resp.Roster = []string{}
		resp.StudentsCount = int(counts[e.CourseID])
		result = append(result, resp)
	}
	return result, nil
}
