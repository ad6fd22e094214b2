package repository

import (
	"time"

	"github.com/user/moviepulse/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// UpsertTrending 写入 trending 榜单快照，同天重跑时更新排名与页码
func (r *SnapshotRepository) UpsertTrending(snap *model.TrendingSnapshot) error {
	snap.SnapshotDate = model.DateOnly(snap.SnapshotDate)
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "movie_id"}, {Name: "list_type"}, {Name: "snapshot_date"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"position", "page"}),
	}).Create(snap).Error
}

// UpsertGenre 写入类型榜单快照，同天重跑时更新排名与页码
func (r *SnapshotRepository) UpsertGenre(snap *model.GenreSnapshot) error {
	snap.SnapshotDate = model.DateOnly(snap.SnapshotDate)
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "movie_id"}, {Name: "genre_id"}, {Name: "snapshot_date"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"position", "page"}),
	}).Create(snap).Error
}

// HasTrending 判断某天某榜单是否已有快照
func (r *SnapshotRepository) HasTrending(listType string, date time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&model.TrendingSnapshot{}).
		Where("list_type = ? AND snapshot_date = ?", listType, model.DateOnly(date)).
		Count(&count).Error
	return count > 0, err
}

// HasGenre 判断某天某类型是否已有快照
func (r *SnapshotRepository) HasGenre(genreID uint, date time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&model.GenreSnapshot{}).
		Where("genre_id = ? AND snapshot_date = ?", genreID, model.DateOnly(date)).
		Count(&count).Error
	return count > 0, err
}

// ListTrendingMovies 按快照排名升序分页返回某天榜单电影
func (r *SnapshotRepository) ListTrendingMovies(listType string, date time.Time, page, perPage int) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.db.Model(&model.Movie{}).
		Joins("JOIN trending_snapshots ON trending_snapshots.movie_id = movies.id").
		Where("trending_snapshots.list_type = ? AND trending_snapshots.snapshot_date = ?",
			listType, model.DateOnly(date)).
		Order("trending_snapshots.position ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&movies).Error
	return movies, err
}

// ListGenreMovies 按快照排名升序分页返回某天某类型榜单电影
func (r *SnapshotRepository) ListGenreMovies(genreID uint, date time.Time, page, perPage int) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.db.Model(&model.Movie{}).
		Joins("JOIN genre_snapshots ON genre_snapshots.movie_id = movies.id").
		Where("genre_snapshots.genre_id = ? AND genre_snapshots.snapshot_date = ?",
			genreID, model.DateOnly(date)).
		Order("genre_snapshots.position ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&movies).Error
	return movies, err
}
