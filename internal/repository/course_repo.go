package repository

import (
	"context"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/model"
)

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	GetByCodeSection(ctx context.Context, code, section string) (*model.Course, error)
	ListByFaculty(ctx context.Context, facultyID string) ([]model.Course, error)
	ListAll(ctx context.Context) ([]model.Course, error)
	// AddStudent 集合语义追加名单缓存（已存在则不变）
	AddStudent(ctx context.Context, courseID, studentID string) error
	RemoveStudent(ctx context.Context, courseID, studentID string) error
	SetStudents(ctx context.Context, courseID string, studentIDs []string) error
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Preload("Faculty").
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) GetByCodeSection(ctx context.Context, code, section string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Preload("Faculty").
		Where("code = ? AND section = ?", code, section).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) ListByFaculty(ctx context.Context, facultyID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Preload("Faculty").
		Where("faculty_id = ?", facultyID).
		Order("code ASC, section ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) ListAll(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Order("code ASC, section ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) AddStudent(ctx context.Context, courseID, studentID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("course_id = ? AND NOT (? = ANY(students))", courseID, studentID).
		Updates(map[string]interface{}{
			"students":   gorm.Expr("array_append(students, ?)", studentID),
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *courseRepo) RemoveStudent(ctx context.Context, courseID, studentID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("course_id = ?", courseID).
		Updates(map[string]interface{}{
			"students":   gorm.Expr("array_remove(students, ?)", studentID),
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *courseRepo) SetStudents(ctx context.Context, courseID string, studentIDs []string) error {
	if studentIDs == nil {
		studentIDs = []string{}
	}
	return r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("course_id = ?", courseID).
		Updates(map[string]interface{}{
			"students":   pq.StringArray(studentIDs),
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}
