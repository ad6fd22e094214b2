package model

import (
	"time"
)

// 电影来源标记：首次入库的途径
const (
	SourceTrending = "trending"
	SourceSearch   = "search"
)

// Movie 电影模型（TMDB 信息）
type Movie struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	TmdbID       int        `json:"tmdb_id" gorm:"uniqueIndex;not null"`
	Title        string     `json:"title" gorm:"not null"`
	PosterPath   string     `json:"poster_path"`
	BackdropPath string     `json:"backdrop_path"`
	Overview     string     `json:"overview" gorm:"type:text"`
	ReleaseDate  *time.Time `json:"release_date"`
	VoteAverage  float64    `json:"vote_average"`
	Popularity   *float64   `json:"popularity" gorm:"index"`
	Source       string     `json:"source" gorm:"default:search"`

	// 详情同步后补全的扩展字段
	Tagline         string     `json:"tagline"`
	Runtime         int        `json:"runtime"`
	Crew            string     `json:"crew" gorm:"type:text"` // JSON 序列化的 []CrewMember
	DetailsSyncedAt *time.Time `json:"details_synced_at"`

	Genres  []Genre `json:"genres,omitempty" gorm:"many2many:genre_movie"`
	Similar []Movie `json:"-" gorm:"many2many:movie_similar;joinForeignKey:MovieID;joinReferences:SimilarID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Genre 类型（TMDB genre）
type Genre struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	TmdbID int    `json:"tmdb_id" gorm:"uniqueIndex;not null"`
	Name   string `json:"name" gorm:"not null"`
}

// Person 人物（演员/剧组成员）
type Person struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	TmdbID      int    `json:"tmdb_id" gorm:"uniqueIndex;not null"`
	Name        string `json:"name" gorm:"not null"`
	ProfilePath string `json:"profile_path"`
}

// MovieCast 电影演职表条目，每次详情同步整表重写
type MovieCast struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	MovieID       uint   `json:"movie_id" gorm:"index;not null"`
	PersonID      uint   `json:"person_id" gorm:"not null"`
	CharacterName string `json:"character_name"`
	CastOrder     int    `json:"cast_order"`

	Person *Person `json:"person,omitempty" gorm:"foreignKey:PersonID"`
}

// CrewMember 剧组成员（存储在 Movie.Crew JSON 列中）
type CrewMember struct {
	TmdbID      int    `json:"tmdb_id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	ProfilePath string `json:"profile_path,omitempty"`
}
