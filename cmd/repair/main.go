// repair 由已批准的选课记录重建 courses.students 与 users.enrolled_courses 冗余缓存。
// 用于修复并发审批或手工改库导致的缓存漂移；可重复执行。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/VijayVPatil13/Digital-Lab-Records/config"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/repository"
	"github.com/VijayVPatil13/Digital-Lab-Records/internal/service"
	"github.com/VijayVPatil13/Digital-Lab-Records/pkg/database"
	applogger "github.com/VijayVPatil13/Digital-Lab-Records/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	migrate := flag.Bool("migrate", false, "修复前先执行数据库迁移")
	timeout := flag.Duration("timeout", 5*time.Minute, "整体超时")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()

	if *migrate {
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	roster := service.NewRosterService(repository.NewRepository(db), logger)
	result, err := roster.Repair(ctx)
	if err != nil {
		logger.Fatal("花名册修复失败", zap.Error(err))
	}

	fmt.Printf("courses updated: %d\nusers updated: %d\n", result.CoursesUpdated, result.UsersUpdated)
}
