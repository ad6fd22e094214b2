package repository

import (
	"errors"

	"github.com/user/moviepulse/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GenreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

// UpsertAll 按 tmdb_id 批量创建或更新类型
func (r *GenreRepository) UpsertAll(items []model.UpstreamGenre) error {
	for _, item := range items {
		genre := model.Genre{
			TmdbID: item.TmdbID,
			Name:   item.Name,
		}
		err := r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tmdb_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).Create(&genre).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// List 列出全部类型（按名称排序）
func (r *GenreRepository) List() ([]model.Genre, error) {
	var genres []model.Genre
	err := r.db.Order("name ASC").Find(&genres).Error
	return genres, err
}

// FindByTmdbID 根据 TMDB ID 查找类型
func (r *GenreRepository) FindByTmdbID(tmdbID int) (*model.Genre, error) {
	var genre model.Genre
	err := r.db.Where("tmdb_id = ?", tmdbID).First(&genre).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &genre, nil
}
