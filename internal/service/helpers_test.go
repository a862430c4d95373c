package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/VijayVPatil13/Digital-Lab-Records/internal/model"
)

// ── 测试辅助 ──

// baseTime 固定的“当前时间”
var baseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	store *mockStore
	svc   *Service
	now   time.Time
}

// newTestEnv 以共享内存存储组装全部核心 Service，时钟可由测试拨动
func newTestEnv() *testEnv {
	env := &testEnv{store: newMockStore(), now: baseTime}
	repo := env.store.repository()
	clock := func() time.Time { return env.now }
	logger := zap.NewNop()

	grading := NewGradingService(repo, nil, clock, logger)
	env.svc = &Service{
		Course:     NewCourseService(repo, grading, logger),
		Enrollment: NewEnrollmentService(repo, nil, logger),
		Session:    NewSessionService(repo, clock, logger),
		Submission: NewSubmissionService(repo, nil, clock, logger),
		Grading:    grading,
		Export:     NewExportService(repo, grading, clock, logger),
		Roster:     NewRosterService(repo, logger),
	}
	return env
}

func asFaculty(u *model.User) Actor { return Actor{UserID: u.UserID, Role: model.RoleFaculty} }
func asStudent(u *model.User) Actor { return Actor{UserID: u.UserID, Role: model.RoleStudent} }
func asAdmin(u *model.User) Actor   { return Actor{UserID: u.UserID, Role: model.RoleAdmin} }

func floatPtr(v float64) *float64 { return &v }
