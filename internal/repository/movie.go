package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/user/moviepulse/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// Upsert 按 tmdb_id 创建或刷新电影基础字段
// 冲突时只覆盖列表接口会返回的基础字段，扩展字段与来源标记保持首次入库的值
func (r *MovieRepository) Upsert(item model.UpstreamMovie, source string) (*model.Movie, error) {
	movie := model.Movie{
		TmdbID:       item.TmdbID,
		Title:        item.Title,
		PosterPath:   item.PosterPath,
		BackdropPath: item.BackdropPath,
		Overview:     item.Overview,
		ReleaseDate:  item.ReleaseDate,
		VoteAverage:  item.VoteAverage,
		Popularity:   item.Popularity,
		Source:       source,
	}

	assignments := clause.AssignmentColumns([]string{
		"title", "poster_path", "backdrop_path", "overview",
		"release_date", "vote_average", "updated_at",
	})
	// 上游偶发缺失热度时保留旧值，不让 NULL 覆盖已知热度
	assignments = append(assignments, clause.Assignment{
		Column: clause.Column{Name: "popularity"},
		Value:  gorm.Expr("COALESCE(excluded.popularity, movies.popularity)"),
	})

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tmdb_id"}},
		DoUpdates: assignments,
	}).Create(&movie).Error
	if err != nil {
		return nil, err
	}

	// 冲突路径下 Create 不回填主键，重查一次拿完整行
	return r.FindByTmdbID(item.TmdbID)
}

// FindByTmdbID 根据 TMDB ID 查找电影
func (r *MovieRepository) FindByTmdbID(tmdbID int) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.Where("tmdb_id = ?", tmdbID).First(&movie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// FindByID 根据内部 ID 查找电影（带类型关联）
func (r *MovieRepository) FindByID(id uint) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.Preload("Genres").First(&movie, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// SearchByTitle 标题大小写不敏感的子串匹配，按热度倒序
func (r *MovieRepository) SearchByTitle(query string, limit int) ([]model.Movie, error) {
	var movies []model.Movie
	pattern := "%" + strings.ToLower(query) + "%"
	err := r.db.Where("LOWER(title) LIKE ?", pattern).
		Order("popularity DESC NULLS LAST").
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

// ListByPopularity 按热度倒序分页，快照缺失时的兜底列表
func (r *MovieRepository) ListByPopularity(page, perPage int) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.db.Order("popularity DESC NULLS LAST").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&movies).Error
	return movies, err
}

// ListByGenre 按类型关联过滤的热度倒序分页（类型快照缺失时的兜底）
func (r *MovieRepository) ListByGenre(genreID uint, page, perPage int) ([]model.Movie, error) {
	var movies []model.Movie
	err := r.db.
		Joins("JOIN genre_movie ON genre_movie.movie_id = movies.id").
		Where("genre_movie.genre_id = ?", genreID).
		Order("popularity DESC NULLS LAST").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&movies).Error
	return movies, err
}

// ReplaceGenres 全量替换电影的类型关联，只匹配本地已存在的类型
// 未知的上游类型 ID 直接丢弃，不会创建也不会报错；返回实际关联数
func (r *MovieRepository) ReplaceGenres(movie *model.Movie, genreTmdbIDs []int) (int, error) {
	if len(genreTmdbIDs) == 0 {
		return 0, r.db.Model(movie).Association("Genres").Clear()
	}

	var genres []model.Genre
	if err := r.db.Where("tmdb_id IN ?", genreTmdbIDs).Find(&genres).Error; err != nil {
		return 0, err
	}

	if err := r.db.Model(movie).Association("Genres").Replace(&genres); err != nil {
		return 0, err
	}
	return len(genres), nil
}

// UpdateDetails 详情同步后更新扩展字段
func (r *MovieRepository) UpdateDetails(movie *model.Movie, tagline string, runtime int, crewJSON string, popularity *float64) error {
	now := time.Now()
	updates := map[string]interface{}{
		"tagline":           tagline,
		"runtime":           runtime,
		"crew":              crewJSON,
		"details_synced_at": &now,
		"updated_at":        now,
	}
	if popularity != nil {
		updates["popularity"] = popularity
	}
	return r.db.Model(movie).Updates(updates).Error
}

// AddSimilar 记录相似电影关联，重复写入直接吸收
func (r *MovieRepository) AddSimilar(movieID, similarID uint) error {
	return r.db.Exec(
		"INSERT INTO movie_similar (movie_id, similar_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		movieID, similarID,
	).Error
}
