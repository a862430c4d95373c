package repository

import (
	"context"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ListStudents(ctx context.Context) ([]model.User, error)
	// AddEnrolledCourse 集合语义追加课程缓存（已存在则不变）
	AddEnrolledCourse(ctx context.Context, userID, courseID string) error
	RemoveEnrolledCourse(ctx context.Context, userID, courseID string) error
	SetEnrolledCourses(ctx context.Context, userID string, courseIDs []string) error
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ListStudents(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("role = ?", model.RoleStudent).
		Find(&users).Error
	return users, err
}

func (r *userRepo) AddEnrolledCourse(ctx context.Context, userID, courseID string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ? AND NOT (? = ANY(enrolled_courses))", userID, courseID).
		Updates(map[string]interface{}{
			"enrolled_courses": gorm.Expr("array_append(enrolled_courses, ?)", courseID),
			"updated_at":       gorm.Expr("NOW()"),
		}).Error
}

func (r *userRepo) RemoveEnrolledCourse(ctx context.Context, userID, courseID string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"enrolled_courses": gorm.Expr("array_remove(enrolled_courses, ?)", courseID),
			"updated_at":       gorm.Expr("NOW()"),
		}).Error
}

func (r *userRepo) SetEnrolledCourses(ctx context.Context, userID string, courseIDs []string) error {
	if courseIDs == nil {
		courseIDs = []string{}
	}
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"enrolled_courses": pq.StringArray(courseIDs),
			"updated_at":       gorm.Expr("NOW()"),
		}).Error
}
