package repository

import (
	"github.com/user/moviepulse/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PersonRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

// Upsert 按 tmdb_id 创建或更新人物，返回本地行
func (r *PersonRepository) Upsert(tmdbID int, name, profilePath string) (*model.Person, error) {
	person := model.Person{
		TmdbID:      tmdbID,
		Name:        name,
		ProfilePath: profilePath,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tmdb_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "profile_path"}),
	}).Create(&person).Error
	if err != nil {
		return nil, err
	}

	var found model.Person
	if err := r.db.Where("tmdb_id = ?", tmdbID).First(&found).Error; err != nil {
		return nil, err
	}
	return &found, nil
}

// ReplaceCast 全量重写电影的演职表
// 同步后该电影的演职表与本次上游返回完全一致，顺序保持不变
func (r *PersonRepository) ReplaceCast(movieID uint, entries []model.UpstreamCast) error {
	rows := make([]model.MovieCast, 0, len(entries))
	for _, entry := range entries {
		person, err := r.Upsert(entry.PersonTmdbID, entry.Name, entry.ProfilePath)
		if err != nil {
			return err
		}
		rows = append(rows, model.MovieCast{
			MovieID:       movieID,
			PersonID:      person.ID,
			CharacterName: entry.Character,
			CastOrder:     entry.Order,
		})
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("movie_id = ?", movieID).Delete(&model.MovieCast{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// ListCast 按出场顺序列出电影演职表（带人物信息）
func (r *PersonRepository) ListCast(movieID uint) ([]model.MovieCast, error) {
	var rows []model.MovieCast
	err := r.db.Preload("Person").
		Where("movie_id = ?", movieID).
		Order("cast_order ASC").
		Find(&rows).Error
	return rows, err
}
