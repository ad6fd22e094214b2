package repository

import (
	"time"

	"github.com/user/moviepulse/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClickRepository struct {
	db *gorm.DB
}

func NewClickRepository(db *gorm.DB) *ClickRepository {
	return &ClickRepository{db: db}
}

// Create 记录一次点击，时间截断到秒
// 同一 (ip, 电影, 秒) 的重复提交被唯一约束直接吸收，不算错误
func (r *ClickRepository) Create(click *model.MovieClick) error {
	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now()
	}
	click.ClickedAt = click.ClickedAt.Truncate(time.Second)

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "ip_address"}, {Name: "tmdb_movie_id"}, {Name: "clicked_at"},
		},
		DoNothing: true,
	}).Create(click).Error
}

// RecentViews 最近的点击记录（时间倒序）
func (r *ClickRepository) RecentViews(limit int) ([]model.MovieClick, error) {
	var clicks []model.MovieClick
	err := r.db.Order("clicked_at DESC").Limit(limit).Find(&clicks).Error
	return clicks, err
}

// TodayCount 过去 24 小时内的点击量
func (r *ClickRepository) TodayCount(tmdbMovieID int) (int64, error) {
	var count int64
	since := time.Now().Add(-24 * time.Hour)
	err := r.db.Model(&model.MovieClick{}).
		Where("tmdb_movie_id = ? AND clicked_at > ?", tmdbMovieID, since).
		Count(&count).Error
	return count, err
}

// TotalCount 累计点击量
func (r *ClickRepository) TotalCount(tmdbMovieID int) (int64, error) {
	var count int64
	err := r.db.Model(&model.MovieClick{}).
		Where("tmdb_movie_id = ?", tmdbMovieID).
		Count(&count).Error
	return count, err
}

// HeatmapData 按电影聚合的点击热度，累计量倒序
func (r *ClickRepository) HeatmapData(limit int) ([]model.MovieHeat, error) {
	var rows []model.MovieHeat
	since := time.Now().Add(-24 * time.Hour)
	err := r.db.Model(&model.MovieClick{}).
		Select(`tmdb_movie_id,
			MAX(movie_title) AS movie_title,
			MAX(poster_path) AS poster_path,
			COUNT(*) AS total_count,
			SUM(CASE WHEN clicked_at > ? THEN 1 ELSE 0 END) AS today_count`, since).
		Group("tmdb_movie_id").
		Order("total_count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
