package model

import (
	"time"
)

// MovieClick 点击事件，写入后不更新不删除
// 唯一约束 (ip, tmdb_movie_id, clicked_at 秒级)：同一客户端同一秒内的重复提交直接吸收
type MovieClick struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	IPAddress   string    `json:"ip_address" gorm:"uniqueIndex:idx_click_dedup;not null"`
	TmdbMovieID int       `json:"tmdb_movie_id" gorm:"uniqueIndex:idx_click_dedup;index;not null"`
	MovieTitle  string    `json:"movie_title" gorm:"not null"`
	PosterPath  string    `json:"poster_path"`
	ClickedAt   time.Time `json:"clicked_at" gorm:"uniqueIndex:idx_click_dedup;index;not null"`
}

// MovieHeat 热度聚合行（按电影统计点击量）
type MovieHeat struct {
	TmdbMovieID int    `json:"tmdb_movie_id"`
	MovieTitle  string `json:"movie_title"`
	PosterPath  string `json:"poster_path"`
	TotalCount  int64  `json:"total_count"`
	TodayCount  int64  `json:"today_count"`
}
