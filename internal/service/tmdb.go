package service

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/user/moviepulse/internal/config"
	"github.com/user/moviepulse/internal/model"
	"github.com/user/moviepulse/internal/utils"
)

// MovieSource 上游电影元数据源
// 失败（非 2xx / 超时）一律本地消化：列表接口返回空集，详情返回 nil，调用方决定兜底
type MovieSource interface {
	FetchTrending(page int) *model.UpstreamPage
	FetchByGenre(genreTmdbID, page int) *model.UpstreamPage
	SearchByTitle(query string, page int) []model.UpstreamMovie
	FetchGenreList() []model.UpstreamGenre
	FetchDetails(tmdbID int) *model.MovieDetails
}

// 各类响应的缓存有效期：列表短，类型表和详情长
const (
	listingCacheTTL = 15 * time.Minute
	genreCacheTTL   = 12 * time.Hour
	detailsCacheTTL = 6 * time.Hour
)

// TMDBClient TMDB 上游客户端
type TMDBClient struct {
	config       *config.Config
	client       *http.Client
	listingCache *utils.Cache                          // 列表/搜索响应，约 15 分钟
	genreCache   *utils.TTLCache[[]model.UpstreamGenre] // 类型表
	detailsCache *utils.TTLCache[*model.MovieDetails]   // 电影详情
}

// NewTMDBClient 创建 TMDB 客户端，listingCache 由调用方注入
func NewTMDBClient(cfg *config.Config, listingCache *utils.Cache) *TMDBClient {
	return &TMDBClient{
		config: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		listingCache: listingCache,
		genreCache:   utils.NewTTLCache[[]model.UpstreamGenre](8, genreCacheTTL),
		detailsCache: utils.NewTTLCache[*model.MovieDetails](1000, detailsCacheTTL),
	}
}

// getJSON 带鉴权请求 TMDB 并解析 JSON
func (c *TMDBClient) getJSON(path string, params url.Values, target interface{}) error {
	u := c.config.TMDBBaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.TMDBToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("请求返回状态码: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("解析JSON失败: %w", err)
	}
	return nil
}

// tmdbMovieItem 上游电影条目原始形状
type tmdbMovieItem struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	Popularity   float64 `json:"popularity"`
	GenreIDs     []int   `json:"genre_ids"`
}

// tmdbPageResponse 分页列表响应包
type tmdbPageResponse struct {
	Page       int             `json:"page"`
	Results    []tmdbMovieItem `json:"results"`
	TotalPages int             `json:"total_pages"`
}

// normalize 把上游条目转成归一化 DTO，越过这条边界后下游只认一种形状
func (item tmdbMovieItem) normalize() model.UpstreamMovie {
	m := model.UpstreamMovie{
		TmdbID:       item.ID,
		Title:        item.Title,
		PosterPath:   item.PosterPath,
		BackdropPath: item.BackdropPath,
		Overview:     item.Overview,
		VoteAverage:  item.VoteAverage,
		GenreTmdbIDs: item.GenreIDs,
	}
	if item.ReleaseDate != "" {
		if t, err := time.Parse("2006-01-02", item.ReleaseDate); err == nil {
			m.ReleaseDate = &t
		}
	}
	if item.Popularity > 0 {
		pop := item.Popularity
		m.Popularity = &pop
	}
	return m
}

func normalizeAll(items []tmdbMovieItem) []model.UpstreamMovie {
	result := make([]model.UpstreamMovie, 0, len(items))
	for _, item := range items {
		result = append(result, item.normalize())
	}
	return result
}

// fetchPage 请求分页列表接口，失败时返回空页
func (c *TMDBClient) fetchPage(cacheKey, path string, params url.Values) *model.UpstreamPage {
	if cached, found := c.listingCache.Get(cacheKey); found {
		if page, ok := cached.(*model.UpstreamPage); ok {
			return page
		}
	}

	var resp tmdbPageResponse
	if err := c.getJSON(path, params, &resp); err != nil {
		log.Printf("[TMDB] 列表请求失败 (%s): %v", cacheKey, err)
		return &model.UpstreamPage{Items: []model.UpstreamMovie{}}
	}

	page := &model.UpstreamPage{
		Items:      normalizeAll(resp.Results),
		Page:       resp.Page,
		TotalPages: resp.TotalPages,
	}
	c.listingCache.Set(cacheKey, page, listingCacheTTL)
	return page
}

// FetchTrending 当日 trending 榜单
func (c *TMDBClient) FetchTrending(page int) *model.UpstreamPage {
	params := url.Values{}
	params.Set("page", fmt.Sprint(page))
	cacheKey := fmt.Sprintf("trending:%d", page)
	return c.fetchPage(cacheKey, "/trending/movie/day", params)
}

// FetchByGenre 按类型发现电影
func (c *TMDBClient) FetchByGenre(genreTmdbID, page int) *model.UpstreamPage {
	params := url.Values{}
	params.Set("with_genres", fmt.Sprint(genreTmdbID))
	params.Set("page", fmt.Sprint(page))
	params.Set("sort_by", "popularity.desc")
	params.Set("include_adult", "false")
	cacheKey := fmt.Sprintf("genre:%d:%d", genreTmdbID, page)
	return c.fetchPage(cacheKey, "/discover/movie", params)
}

// SearchByTitle 按标题搜索
func (c *TMDBClient) SearchByTitle(query string, page int) []model.UpstreamMovie {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", fmt.Sprint(page))
	params.Set("include_adult", "false")
	cacheKey := fmt.Sprintf("search:%s:%d", query, page)
	return c.fetchPage(cacheKey, "/search/movie", params).Items
}

// tmdbGenreListResponse 类型表响应
type tmdbGenreListResponse struct {
	Genres []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// FetchGenreList 全部电影类型，失败时返回空集
func (c *TMDBClient) FetchGenreList() []model.UpstreamGenre {
	if cached, found := c.genreCache.Get("genres"); found {
		return cached
	}

	var resp tmdbGenreListResponse
	if err := c.getJSON("/genre/movie/list", nil, &resp); err != nil {
		log.Printf("[TMDB] 类型表请求失败: %v", err)
		return []model.UpstreamGenre{}
	}

	genres := make([]model.UpstreamGenre, 0, len(resp.Genres))
	for _, g := range resp.Genres {
		genres = append(genres, model.UpstreamGenre{TmdbID: g.ID, Name: g.Name})
	}
	c.genreCache.Set("genres", genres)
	return genres
}

// tmdbDetailsResponse 电影详情（含演职表与相似电影）响应
type tmdbDetailsResponse struct {
	tmdbMovieItem
	Tagline string `json:"tagline"`
	Runtime int    `json:"runtime"`
	Genres  []struct {
		ID int `json:"id"`
	} `json:"genres"`
	Credits struct {
		Cast []struct {
			ID          int    `json:"id"`
			Name        string `json:"name"`
			ProfilePath string `json:"profile_path"`
			Character   string `json:"character"`
			Order       int    `json:"order"`
		} `json:"cast"`
		Crew []struct {
			ID          int    `json:"id"`
			Name        string `json:"name"`
			Job         string `json:"job"`
			Department  string `json:"department"`
			ProfilePath string `json:"profile_path"`
		} `json:"crew"`
	} `json:"credits"`
	Similar struct {
		Results []tmdbMovieItem `json:"results"`
	} `json:"similar"`
}

// FetchDetails 电影详情，失败时返回 nil
func (c *TMDBClient) FetchDetails(tmdbID int) *model.MovieDetails {
	cacheKey := fmt.Sprintf("details:%d", tmdbID)
	if cached, found := c.detailsCache.Get(cacheKey); found {
		return cached
	}

	params := url.Values{}
	params.Set("append_to_response", "credits,similar")
	params.Set("include_adult", "false")

	var resp tmdbDetailsResponse
	if err := c.getJSON(fmt.Sprintf("/movie/%d", tmdbID), params, &resp); err != nil {
		log.Printf("[TMDB] 详情请求失败 (tmdb_id: %d): %v", tmdbID, err)
		return nil
	}

	details := &model.MovieDetails{
		UpstreamMovie: resp.tmdbMovieItem.normalize(),
		Tagline:       resp.Tagline,
		Runtime:       resp.Runtime,
		Similar:       normalizeAll(resp.Similar.Results),
	}

	// 详情接口的类型在 genres 对象里而不是 genre_ids
	for _, g := range resp.Genres {
		details.GenreTmdbIDs = append(details.GenreTmdbIDs, g.ID)
	}

	for _, member := range resp.Credits.Crew {
		details.Crew = append(details.Crew, model.CrewMember{
			TmdbID:      member.ID,
			Name:        member.Name,
			Job:         member.Job,
			Department:  member.Department,
			ProfilePath: member.ProfilePath,
		})
	}
	for _, member := range resp.Credits.Cast {
		details.Cast = append(details.Cast, model.UpstreamCast{
			PersonTmdbID: member.ID,
			Name:         member.Name,
			ProfilePath:  member.ProfilePath,
			Character:    member.Character,
			Order:        member.Order,
		})
	}

	c.detailsCache.Set(cacheKey, details)
	return details
}

// PosterURL 拼接完整海报地址
func (c *TMDBClient) PosterURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return c.config.TMDBImageURL + "/w500" + posterPath
}
