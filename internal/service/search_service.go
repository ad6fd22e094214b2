package service

import (
	"fmt"
	"log"
	"time"

	"github.com/user/moviepulse/internal/config"
	"github.com/user/moviepulse/internal/model"
	"github.com/user/moviepulse/internal/repository"
	"golang.org/x/sync/singleflight"
)

// 搜索合并参数
const (
	SearchQueryMinLen = 2
	SearchQueryMaxLen = 100

	searchLocalLimit = 20 // 本地结果上限
	searchThreshold  = 5  // 本地结果低于该数才补上游
	searchMaxResults = 20 // 合并后的结果上限
	searchFullPage   = 20 // 上游整页大小，判断 hasMore 用
)

// SearchItem 搜索结果条目（已补全海报地址与本地 ID）
type SearchItem struct {
	ID          *uint      `json:"id,omitempty"` // 本地库 ID，未入库时为空
	TmdbID      int        `json:"tmdb_id"`
	Title       string     `json:"title"`
	PosterPath  string     `json:"poster_path"`
	PosterURL   string     `json:"poster_url"`
	Overview    string     `json:"overview"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	VoteAverage float64    `json:"vote_average"`
	Local       bool       `json:"local"`
}

// SearchOutcome 搜索合并结果
type SearchOutcome struct {
	Items   []SearchItem `json:"items"`
	HasMore bool         `json:"has_more"`
}

// SearchService 本地优先的搜索合并
// 本地标题命中不足阈值时补一次上游搜索并落库；合并时本地在前，
// 按 tmdb_id 去重（本地优先），最多返回 20 条
type SearchService struct {
	repos    *repository.Repositories
	source   MovieSource
	imageURL string
	sf       singleflight.Group
}

// NewSearchService 创建搜索服务
func NewSearchService(repos *repository.Repositories, source MovieSource, cfg *config.Config) *SearchService {
	return &SearchService{
		repos:    repos,
		source:   source,
		imageURL: cfg.TMDBImageURL,
	}
}

// Search 执行一次搜索合并
// 上游失败只会少补结果，不会让搜索报错；本地足够时零上游调用
func (s *SearchService) Search(query string, page int) (*SearchOutcome, error) {
	if page < 1 {
		page = 1
	}

	// 1. 本地查找
	local, err := s.repos.Movie.SearchByTitle(query, searchLocalLimit)
	if err != nil {
		return nil, err
	}

	// 2. 本地不足阈值才打上游，恰好一次
	var upstream []model.UpstreamMovie
	upstreamCalled := false
	if len(local) < searchThreshold {
		upstreamCalled = true
		upstream = s.fetchAndPersist(query, page)
	}

	// 3. 合并：本地在前，上游去掉本地已有的 tmdb_id
	seen := make(map[int]bool, len(local))
	items := make([]SearchItem, 0, searchMaxResults)
	for _, movie := range local {
		seen[movie.TmdbID] = true
		items = append(items, s.fromLocal(movie))
	}
	for _, item := range upstream {
		if seen[item.TmdbID] {
			continue
		}
		seen[item.TmdbID] = true
		items = append(items, s.fromUpstream(item))
	}

	// 4. 截断
	if len(items) > searchMaxResults {
		items = items[:searchMaxResults]
	}

	return &SearchOutcome{
		Items:   items,
		HasMore: upstreamCalled && len(upstream) >= searchFullPage,
	}, nil
}

// fetchAndPersist 上游搜索并把结果落库（source=search）
// 并发同词请求用 singleflight 合并成一次上游调用
func (s *SearchService) fetchAndPersist(query string, page int) []model.UpstreamMovie {
	key := fmt.Sprintf("search:%s:%d", query, page)
	val, _, _ := s.sf.Do(key, func() (interface{}, error) {
		results := s.source.SearchByTitle(query, page)
		for _, item := range results {
			movie, err := s.repos.Movie.Upsert(item, model.SourceSearch)
			if err != nil {
				log.Printf("[SearchService] 落库失败 (tmdb_id: %d): %v", item.TmdbID, err)
				continue
			}
			if _, err := s.repos.Movie.ReplaceGenres(movie, item.GenreTmdbIDs); err != nil {
				log.Printf("[SearchService] 类型关联失败 (tmdb_id: %d): %v", item.TmdbID, err)
			}
		}
		return results, nil
	})
	return val.([]model.UpstreamMovie)
}

func (s *SearchService) fromLocal(movie model.Movie) SearchItem {
	id := movie.ID
	vote := movie.VoteAverage
	return SearchItem{
		ID:          &id,
		TmdbID:      movie.TmdbID,
		Title:       movie.Title,
		PosterPath:  movie.PosterPath,
		PosterURL:   s.posterURL(movie.PosterPath),
		Overview:    movie.Overview,
		ReleaseDate: movie.ReleaseDate,
		VoteAverage: vote,
		Local:       true,
	}
}

func (s *SearchService) fromUpstream(item model.UpstreamMovie) SearchItem {
	searchItem := SearchItem{
		TmdbID:      item.TmdbID,
		Title:       item.Title,
		PosterPath:  item.PosterPath,
		PosterURL:   s.posterURL(item.PosterPath),
		Overview:    item.Overview,
		ReleaseDate: item.ReleaseDate,
		VoteAverage: item.VoteAverage,
	}
	// 刚落库的行带上本地 ID
	if movie, err := s.repos.Movie.FindByTmdbID(item.TmdbID); err == nil && movie != nil {
		searchItem.ID = &movie.ID
	}
	return searchItem
}

func (s *SearchService) posterURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return s.imageURL + "/w500" + posterPath
}
