package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/model"
)

// EnrollmentRepository 选课数据访问接口
type EnrollmentRepository interface {
	// Create 插入选课记录；(course_id, student_id, section) 冲突时返回唯一约束错误
	Create(ctx context.Context, enrollment *model.Enrollment) error
	GetByID(ctx context.Context, id string) (*model.Enrollment, error)
	// GetByIDForUpdate 使用 SELECT ... FOR UPDATE 行级锁读取，须在事务连接上调用
	GetByIDForUpdate(ctx context.Context, id string) (*model.Enrollment, error)
	GetByCourseStudent(ctx context.Context, courseID, studentID, section string) (*model.Enrollment, error)
	ListPendingByFaculty(ctx context.Context, facultyID string) ([]model.Enrollment, error)
	UpdateStatus(ctx context.Context, id, status string) error
	ListApprovedByCourse(ctx context.Context, courseID, section string) ([]model.Enrollment, error)
	ListApprovedByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error)
	ListAllApproved(ctx context.Context) ([]model.Enrollment, error)
	CountApprovedByCourses(ctx context.Context, courseIDs []string) (map[string]int64, error)
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("enrollment_id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("enrollment_id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) GetByCourseStudent(ctx context.Context, courseID, studentID, section string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ? AND section = ?", courseID, studentID, section).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListPendingByFaculty 该教师所有课程下的待审批选课（含学生与课程信息）
func (r *enrollmentRepo) ListPendingByFaculty(ctx context.Context, facultyID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").Preload("Course").
		Joins("JOIN courses ON courses.course_id = enrollments.course_id").
		Where("courses.faculty_id = ? AND enrollments.status = ?", facultyID, model.EnrollmentPending).
		Order("enrollments.requested_at ASC").
		Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("enrollment_id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

// ListApprovedByCourse 课程某班级当前已批准名单（名单的真实来源）
func (r *enrollmentRepo) ListApprovedByCourse(ctx context.Context, courseID, section string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("course_id = ? AND section = ? AND status = ?", courseID, section, model.EnrollmentApproved).
		Order("requested_at ASC").
		Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) ListApprovedByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").Preload("Course.Faculty").
		Where("student_id = ? AND status = ?", studentID, model.EnrollmentApproved).
		Order("requested_at DESC").
		Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) ListAllApproved(ctx context.Context) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Where("status = ?", model.EnrollmentApproved).
		Find(&list).Error
	return list, err
}

// CountApprovedByCourses 按课程统计已批准人数（仅计与课程班级一致的记录）
func (r *enrollmentRepo) CountApprovedByCourses(ctx context.Context, courseIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(courseIDs))
	if len(courseIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		CourseID string
		Total    int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Select("enrollments.course_id AS course_id, COUNT(*) AS total").
		Joins("JOIN courses ON courses.course_id = enrollments.course_id AND courses.section = enrollments.section").
		Where("enrollments.course_id IN ? AND enrollments.status = ?", courseIDs, model.EnrollmentApproved).
		Group("enrollments.course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.CourseID] = row.Total
	}
	return result, nil
}
