package model

import (
	"time"
)

// 榜单类型标记，用于区分不同的 trending 榜单
const (
	ListTypeTrendingDay = "trending_day"
)

// TrendingSnapshot 记录某部电影在某天 trending 榜单中的排名
type TrendingSnapshot struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	MovieID      uint      `json:"movie_id" gorm:"uniqueIndex:idx_trending_snapshot;not null"`
	ListType     string    `json:"list_type" gorm:"uniqueIndex:idx_trending_snapshot;not null"`
	SnapshotDate time.Time `json:"snapshot_date" gorm:"uniqueIndex:idx_trending_snapshot;type:date;not null"`
	Position     int       `json:"position" gorm:"not null"`
	Page         int       `json:"page" gorm:"not null"`

	Movie *Movie `json:"movie,omitempty" gorm:"foreignKey:MovieID"`
}

// GenreSnapshot 记录某部电影在某天某类型榜单中的排名
type GenreSnapshot struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	MovieID      uint      `json:"movie_id" gorm:"uniqueIndex:idx_genre_snapshot;not null"`
	GenreID      uint      `json:"genre_id" gorm:"uniqueIndex:idx_genre_snapshot;not null"`
	SnapshotDate time.Time `json:"snapshot_date" gorm:"uniqueIndex:idx_genre_snapshot;type:date;not null"`
	Position     int       `json:"position" gorm:"not null"`
	Page         int       `json:"page" gorm:"not null"`

	Movie *Movie `json:"movie,omitempty" gorm:"foreignKey:MovieID"`
}

// DateOnly 归一化到当天零点（UTC），快照日期统一用它生成
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
