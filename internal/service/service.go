package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/VijayVPatil13/Digital-Lab-Records/config"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/repository"
	"github.com/VijayVPatil13/Digital-Lab-Records/pkg/jwt"
	"github.com/VijayVPatil13/Digital-Lab-Records/pkg/metrics"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Course     CourseService
	Enrollment EnrollmentService
	Session    SessionService
	Submission SubmissionService
	Grading    GradingService
	Export     ExportService
	Roster     RosterService
}

// Clock 当前时间来源；测试中替换为固定时间
type Clock func() time.Time

// NewService 创建 Service 聚合
// blacklist 为 nil 时登出不写黑名单（Redis 不可用的降级模式）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	clock := Clock(time.Now)
	grading := NewGradingService(repo, m, clock, logger)

	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		Course:     NewCourseService(repo, grading, logger),
		Enrollment: NewEnrollmentService(repo, m, logger),
		Session:    NewSessionService(repo, clock, logger),
		Submission: NewSubmissionService(repo, m, clock, logger),
		Grading:    grading,
		Export:     NewExportService(repo, grading, clock, logger),
		Roster:     NewRosterService(repo, logger),
	}
}

// ── 调用方身份 ──

// Actor 经身份服务验证的调用方 (user_id, role)，核心逻辑无条件信任
type Actor struct {
	UserID string
	Role   string
}

// require 每个操作入口处的一次性角色检查
func (a Actor) require(roles ...string) error {
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return ErrRoleForbidden
}

// ── 事务 ──

// runInTx 在单个事务中执行 fn；fn 返回错误或 panic 时回滚
// mock 仓储下 BeginTx 返回 nil 事务，fn 直接使用原 Repository
func runInTx(ctx context.Context, repo *repository.Repository, fn func(txRepo *repository.Repository) error) error {
	tx, err := repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	if err := fn(repo.WithTx(tx)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		return tx.Commit().Error
	}
	return nil
}
