package model

import (
	"time"
)

// UpstreamMovie 上游电影条目的归一化 DTO
// 所有 TMDB 响应在客户端边界统一转换成这个形状，下游只认它
type UpstreamMovie struct {
	TmdbID       int
	Title        string
	PosterPath   string
	BackdropPath string
	Overview     string
	ReleaseDate  *time.Time
	VoteAverage  float64
	Popularity   *float64
	GenreTmdbIDs []int
}

// UpstreamPage 带分页信息的上游列表响应
type UpstreamPage struct {
	Items      []UpstreamMovie
	Page       int
	TotalPages int
}

// UpstreamGenre 上游类型条目
type UpstreamGenre struct {
	TmdbID int
	Name   string
}

// UpstreamCast 上游演职表条目
type UpstreamCast struct {
	PersonTmdbID int
	Name         string
	ProfilePath  string
	Character    string
	Order        int
}

// MovieDetails 上游电影详情（含演职表与相似电影）
type MovieDetails struct {
	UpstreamMovie
	Tagline string
	Runtime int
	Crew    []CrewMember
	Cast    []UpstreamCast
	Similar []UpstreamMovie
}
