package repository

import (
	"fmt"

	"github.com/user/moviepulse/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 初始化数据库连接并迁移表结构
func InitDB(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("表结构迁移失败: %w", err)
	}

	return db, nil
}

// Migrate 迁移所有表结构
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Movie{},
		&model.Genre{},
		&model.Person{},
		&model.MovieCast{},
		&model.MovieClick{},
		&model.TrendingSnapshot{},
		&model.GenreSnapshot{},
	)
}

// Repositories 仓库集合
type Repositories struct {
	DB       *gorm.DB
	Movie    *MovieRepository
	Genre    *GenreRepository
	Person   *PersonRepository
	Click    *ClickRepository
	Snapshot *SnapshotRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:       db,
		Movie:    NewMovieRepository(db),
		Genre:    NewGenreRepository(db),
		Person:   NewPersonRepository(db),
		Click:    NewClickRepository(db),
		Snapshot: NewSnapshotRepository(db),
	}
}
