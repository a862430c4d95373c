package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/model"
)

// SubmissionRepository 提交数据访问接口
type SubmissionRepository interface {
	// Create 插入提交；(session_id, student_id, section) 冲突时返回唯一约束错误
	Create(ctx context.Context, submission *model.Submission) error
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	GetBySessionStudent(ctx context.Context, sessionID, studentID, section string) (*model.Submission, error)
	ListBySession(ctx context.Context, sessionID string) ([]model.Submission, error)
	ListByStudent(ctx context.Context, studentID string, offset, limit int) ([]model.Submission, int64, error)
	// UpdateGrade 写入分数与评语并置 is_reviewed
	UpdateGrade(ctx context.Context, id string, marks float64, feedback string) error
	// StatsByCourseSection 按学生聚合提交数与总分（未评分按 0 计）
	StatsByCourseSection(ctx context.Context, courseID, section string, studentIDs []string) ([]model.StudentStat, error)
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, submission *model.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	var s model.Submission
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Session").Preload("Session.Course").
		Where("submission_id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepo) GetBySessionStudent(ctx context.Context, sessionID, studentID, section string) (*model.Submission, error) {
	var s model.Submission
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND student_id = ? AND section = ?", sessionID, studentID, section).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Submission, error) {
	var list []model.Submission
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Find(&list).Error
	return list, err
}

func (r *submissionRepo) ListByStudent(ctx context.Context, studentID string, offset, limit int) ([]model.Submission, int64, error) {
	var list []model.Submission
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Submission{}).Where("student_id = ?", studentID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Session").Preload("Session.Course").
		Offset(offset).Limit(limit).
		Order("submitted_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *submissionRepo) UpdateGrade(ctx context.Context, id string, marks float64, feedback string) error {
	return r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("submission_id = ?", id).
		Updates(map[string]interface{}{
			"marks":       marks,
			"feedback":    feedback,
			"is_reviewed": true,
			"updated_at":  gorm.Expr("NOW()"),
		}).Error
}

func (r *submissionRepo) StatsByCourseSection(ctx context.Context, courseID, section string, studentIDs []string) ([]model.StudentStat, error) {
	var stats []model.StudentStat
	if len(studentIDs) == 0 {
		return stats, nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Select("student_id, COUNT(*) AS submission_count, COALESCE(SUM(COALESCE(marks, 0)), 0) AS total_marks").
		Where("course_id = ? AND section = ? AND student_id IN ?", courseID, section, studentIDs).
		Group("student_id").
		Scan(&stats).Error
	return stats, err
}
