package database

import (
	"fmt"
	"time"

	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/pkg/log"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 初始化数据库连接
func NewDB(conf *config.Config) *gorm.DB {
	db, err := Open(conf.MySQL.Driver, conf.MySQL.Dsn(), conf.Debug())
	if err != nil {
		log.L.Fatal("failed to connect database", zap.Error(err))
	}
	log.L.Info("connect database success", zap.String("driver", driverName(conf.MySQL.Driver)))
	return db
}

func driverName(driver string) string {
	if driver == "" {
		return "mysql"
	}
	return driver
}

// Open 按驱动打开连接，sqlite 只允许单连接
func Open(driver, dsn string, debug bool) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        models.Now,
	}
	if debug {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch driverName(driver) {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driverName(driver) == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// Migrate 建表与索引
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// OpenMemory 内存 sqlite，测试使用
func OpenMemory() (*gorm.DB, error) {
	db, err := Open("sqlite", ":memory:", false)
	if err != nil {
		return nil, err
	}
	db.Logger = logger.Default.LogMode(logger.Silent)
	return db, Migrate(db)
}
