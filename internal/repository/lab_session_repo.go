package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/model"
)

// LabSessionRepository 实验课数据访问接口
type LabSessionRepository interface {
	Create(ctx context.Context, session *model.LabSession) error
	GetByID(ctx context.Context, id string) (*model.LabSession, error)
	// ListByCourseSection 按开始时间倒序（最新在前）
	ListByCourseSection(ctx context.Context, courseID, section string) ([]model.LabSession, error)
	// ListForStudent 学生已批准选课对应的全部实验课
	ListForStudent(ctx context.Context, studentID string) ([]model.LabSession, error)
	UpdateAttendance(ctx context.Context, sessionID string, attendance []model.AttendanceEntry) error
}

type labSessionRepo struct {
	db *gorm.DB
}

// NewLabSessionRepo 创建 LabSessionRepository 实例
func NewLabSessionRepo(db *gorm.DB) LabSessionRepository {
	return &labSessionRepo{db: db}
}

func (r *labSessionRepo) Create(ctx context.Context, session *model.LabSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *labSessionRepo) GetByID(ctx context.Context, id string) (*model.LabSession, error) {
	var s model.LabSession
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("session_id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *labSessionRepo) ListByCourseSection(ctx context.Context, courseID, section string) ([]model.LabSession, error) {
	var list []model.LabSession
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND section = ?", courseID, section).
		Order("start_time DESC, created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *labSessionRepo) ListForStudent(ctx context.Context, studentID string) ([]model.LabSession, error) {
	var list []model.LabSession
	err := r.db.WithContext(ctx).
		Preload("Course").
		Joins("JOIN enrollments ON enrollments.course_id = lab_sessions.course_id AND enrollments.section = lab_sessions.section").
		Where("enrollments.student_id = ? AND enrollments.status = ?", studentID, model.EnrollmentApproved).
		Order("lab_sessions.start_time DESC").
		Find(&list).Error
	return list, err
}

func (r *labSessionRepo) UpdateAttendance(ctx context.Context, sessionID string, attendance []model.AttendanceEntry) error {
	return r.db.WithContext(ctx).
		Model(&model.LabSession{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"attendance": datatypes.JSONSlice[model.AttendanceEntry](attendance),
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}
